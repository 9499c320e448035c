package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/serenify-mood/internal/database"
	"github.com/AnshRaj112/serenify-mood/internal/handlers"
	"github.com/AnshRaj112/serenify-mood/internal/models"
	"github.com/AnshRaj112/serenify-mood/internal/routes"
	"github.com/AnshRaj112/serenify-mood/internal/services"
)

type fakeCompleter struct {
	chunks []string
}

func (f *fakeCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	return strings.Join(f.chunks, ""), nil
}

func (f *fakeCompleter) Stream(_ context.Context, _, _ string, onChunk func(string) error) (string, error) {
	for _, c := range f.chunks {
		if err := onChunk(c); err != nil {
			return "", err
		}
	}
	return strings.Join(f.chunks, ""), nil
}

type fakeUploader struct {
	mu      sync.Mutex
	folders []string
}

func (f *fakeUploader) UploadImage(_ context.Context, r io.Reader, folder string) (string, error) {
	if _, err := services.ReadImage(r); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.folders = append(f.folders, folder)
	f.mu.Unlock()
	return "https://cdn.example/" + folder + "/img.png", nil
}

type testServer struct {
	router  chi.Router
	chat    *services.ChatService
	handler *handlers.Handler
}

func newTestServer(t *testing.T, completer services.Completer, uploader services.Uploader) *testServer {
	t.Helper()
	store := database.NewMemoryStore()
	sessions := services.NewSessionManager(store, time.Hour)
	profiles := services.NewProfileService(store)
	records := services.NewRecordStore(store)
	chat := services.NewChatService(completer, records, services.NewChatHistory(store, nil))

	h := &handlers.Handler{
		Auth:           services.NewAuthService(store, sessions, profiles, services.SpecialAccount{}),
		Profiles:       profiles,
		Preferences:    services.NewPreferenceService(store),
		Records:        records,
		Chat:           chat,
		AllowedOrigins: []string{"http://localhost:3000"},
	}
	if uploader != nil {
		h.Uploader = uploader
	}

	r := chi.NewRouter()
	routes.SetupRoutes(r, h)
	t.Cleanup(chat.Wait)
	return &testServer{router: r, chat: chat, handler: h}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) signup(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": email, "password": "secret1", "name": "Tester",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp handlers.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, nil, nil)
	token := s.signup(t, "alice@example.com")

	rec := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "alice@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "nope", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please enter a valid email address", decode(t, rec)["message"])

	rec = s.do(t, http.MethodPost, "/api/auth/signin", "", map[string]string{"email": "alice@example.com", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me handlers.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "alice@example.com", me.User.Email)
	require.NotNil(t, me.Profile)
	assert.Equal(t, "Tester", me.Profile.Name)

	rec = s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDataRoutesRequireSession(t *testing.T) {
	s := newTestServer(t, nil, nil)
	for _, path := range []string{"/api/moods", "/api/emotions", "/api/data/export", "/api/chat/history", "/api/profile"} {
		rec := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, false, decode(t, rec)["success"])
	}
	rec := s.do(t, http.MethodGet, "/api/moods", "made-up-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMoodRoutes(t *testing.T) {
	s := newTestServer(t, nil, nil)
	alice := s.signup(t, "alice@example.com")
	bob := s.signup(t, "bob@example.com")

	rec := s.do(t, http.MethodPost, "/api/moods", alice, handlers.MoodRequest{
		Date: "2026-03-14", Mood: "tired", Intensity: 4, Activities: []string{"Studying"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/api/moods", alice, handlers.MoodRequest{Date: "2026-03-14", Mood: "happy", Intensity: 8})
	require.Equal(t, http.StatusOK, rec.Code)
	var saved handlers.MoodResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, []string{}, saved.Mood.Activities, "a re-save replaces the day's activities")

	rec = s.do(t, http.MethodPost, "/api/moods", alice, handlers.MoodRequest{Date: "2026-03-15", Mood: "sad", Intensity: 11})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/moods", alice, `{"date":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decode(t, rec)["message"])

	rec = s.do(t, http.MethodGet, "/api/moods?limit=5", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 1, body["total"])

	rec = s.do(t, http.MethodPost, "/api/moods/entries", bob, handlers.MoodRequest{Date: "2026-03-14", Mood: "calm", Intensity: 5})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/api/moods/entries", bob, handlers.MoodRequest{Date: "2026-03-14", Mood: "sad", Intensity: 3})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/moods", bob, nil)
	assert.EqualValues(t, 2, decode(t, rec)["total"], "appended entries share a date")
	rec = s.do(t, http.MethodDelete, "/api/data", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/moods", bob, nil)
	assert.EqualValues(t, 0, decode(t, rec)["total"], "users are isolated")

	id := saved.Mood.ID
	rec = s.do(t, http.MethodPut, "/api/moods/"+id, bob, map[string]int{"intensity": 2})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodPut, "/api/moods/"+id, alice, map[string]int{"intensity": 9})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, 9, saved.Mood.Intensity)

	rec = s.do(t, http.MethodGet, "/api/moods/stats", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode(t, rec)["stats"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["total"])

	rec = s.do(t, http.MethodDelete, "/api/moods/"+id, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/moods/"+id, alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/moods/"+id, alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmotionRoutes(t *testing.T) {
	s := newTestServer(t, nil, nil)
	token := s.signup(t, "alice@example.com")

	rec := s.do(t, http.MethodPost, "/api/emotions", token, handlers.EmotionRequest{Emotion: "sad", Confidence: 0.6})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/api/emotions", token, handlers.EmotionRequest{Emotion: "sad", Confidence: 1.5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/emotions/detect", token, handlers.DetectRequest{
		Expressions: map[string]float64{"surprised": 0.9, "neutral": 0.1},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var detected handlers.DetectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detected))
	assert.Equal(t, "excited", detected.Mood.Mood)
	assert.Equal(t, 10, detected.Mood.Intensity)
	assert.Equal(t, "surprised", detected.Emotion.Emotion)

	rec = s.do(t, http.MethodPost, "/api/emotions/detect", token, handlers.DetectRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/emotions", token, nil)
	assert.EqualValues(t, 2, decode(t, rec)["total"])
	rec = s.do(t, http.MethodGet, "/api/emotions/recent?limit=1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	recent := decode(t, rec)["emotions"].([]interface{})
	require.Len(t, recent, 1)
	assert.NotEmpty(t, recent[0].(map[string]interface{})["emotion"])

	rec = s.do(t, http.MethodPost, "/api/emotions/image", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "no uploader configured")
}

func TestExportImportClear(t *testing.T) {
	s := newTestServer(t, nil, nil)
	token := s.signup(t, "alice@example.com")

	for i, mood := range []string{"happy", "sad", "content"} {
		date := time.Date(2026, 3, 10+i, 0, 0, 0, 0, time.UTC).Format(models.DateLayout)
		rec := s.do(t, http.MethodPost, "/api/moods", token, handlers.MoodRequest{Date: date, Mood: mood, Intensity: i + 3})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := s.do(t, http.MethodGet, "/api/data/export", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=\"mood-data-")
	exported := rec.Body.String()

	rec = s.do(t, http.MethodDelete, "/api/data", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/moods", token, nil)
	assert.EqualValues(t, 0, decode(t, rec)["total"])

	rec = s.do(t, http.MethodPost, "/api/data/import", token, `{"emotions":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.ErrInvalidImport.Error(), decode(t, rec)["message"])

	rec = s.do(t, http.MethodPost, "/api/data/import", token, exported)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 3, decode(t, rec)["imported"])

	rec = s.do(t, http.MethodGet, "/api/moods", token, nil)
	assert.EqualValues(t, 3, decode(t, rec)["total"])
}

func TestImportMultipart(t *testing.T) {
	s := newTestServer(t, nil, nil)
	token := s.signup(t, "alice@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "backup.json")
	require.NoError(t, err)
	_, err = fw.Write([]byte(`{"moods":[{"date":"2026-03-01","mood":"calm","intensity":5}]}`))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/data/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, decode(t, rec)["imported"])
}

func TestProfileAndPreferences(t *testing.T) {
	s := newTestServer(t, nil, nil)
	token := s.signup(t, "alice@example.com")

	rec := s.do(t, http.MethodPut, "/api/profile", token, map[string]string{"bio": "CS student"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/profile", token, nil)
	profile := decode(t, rec)["profile"].(map[string]interface{})
	assert.Equal(t, "CS student", profile["bio"])
	assert.Equal(t, "Tester", profile["name"])

	rec = s.do(t, http.MethodGet, "/api/preferences/theme", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["value"])

	rec = s.do(t, http.MethodPut, "/api/preferences/theme", token, `{"value":"dark"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPut, "/api/preferences/theme", token, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/preferences/theme", token, nil)
	assert.Equal(t, "dark", decode(t, rec)["value"])
	rec = s.do(t, http.MethodGet, "/api/preferences", token, nil)
	prefs := decode(t, rec)["preferences"].(map[string]interface{})
	assert.Equal(t, "dark", prefs["theme"])
}

func pngBytes() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
}

func TestUploadProfileImage(t *testing.T) {
	up := &fakeUploader{}
	s := newTestServer(t, nil, up)
	token := s.signup(t, "alice@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "me.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handlers.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://cdn.example/serenify/profiles/img.png", resp.URL)
	assert.Equal(t, resp.URL, resp.Profile.ProfileImageURL)
	assert.Equal(t, []string{services.ProfileImageFolder}, up.folders)
}

func TestDetectMoodWithImage(t *testing.T) {
	up := &fakeUploader{}
	s := newTestServer(t, nil, up)
	token := s.signup(t, "alice@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("expressions", `{"happy":0.7,"sad":0.2}`))
	fw, err := mw.CreateFormFile("image", "snap.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/emotions/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp handlers.DetectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "happy", resp.Mood.Mood)
	assert.Equal(t, "https://cdn.example/serenify/emotions/img.png", resp.Emotion.ImageURL)
}

func TestChatNotConfigured(t *testing.T) {
	s := newTestServer(t, nil, nil)
	token := s.signup(t, "alice@example.com")

	for _, path := range []string{"/api/chat", "/api/chat-simple"} {
		rec := s.do(t, http.MethodPost, path, token, models.ChatRequest{Message: "hi"})
		assert.Equal(t, http.StatusInternalServerError, rec.Code, path)
		assert.Equal(t, "API key is not configured", decode(t, rec)["message"])
	}

	rec := s.do(t, http.MethodGet, "/ws/chat", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestChatSimpleAndHistory(t *testing.T) {
	s := newTestServer(t, &fakeCompleter{chunks: []string{"Take a breath."}}, nil)
	token := s.signup(t, "alice@example.com")

	rec := s.do(t, http.MethodPost, "/api/chat-simple", token, models.ChatRequest{Message: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/chat-simple", token, models.ChatRequest{Message: "I want to die"})
	require.Equal(t, http.StatusOK, rec.Code)
	var reply handlers.ChatSimpleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "Take a breath.", reply.Message)
	assert.True(t, reply.Crisis)

	rec = s.do(t, http.MethodGet, "/api/chat/history", token, nil)
	msgs := decode(t, rec)["messages"].([]interface{})
	assert.Len(t, msgs, 2)

	rec = s.do(t, http.MethodDelete, "/api/chat/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/chat/history", token, nil)
	assert.Empty(t, decode(t, rec)["messages"])
}

func TestChatStreamSSE(t *testing.T) {
	s := newTestServer(t, &fakeCompleter{chunks: []string{"Hello ", "there"}}, nil)
	token := s.signup(t, "alice@example.com")

	rec := s.do(t, http.MethodPost, "/api/chat", token, models.ChatRequest{Message: "hi"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	want := `data: {"choices":[{"delta":{"content":"Hello "}}]}` + "\n\n" +
		`data: {"choices":[{"delta":{"content":"there"}}]}` + "\n\n" +
		"data: [DONE]\n\n"
	assert.Equal(t, want, rec.Body.String())
}

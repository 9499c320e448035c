package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/AnshRaj112/serenify-mood/internal/logger"
	"github.com/AnshRaj112/serenify-mood/internal/models"
)

const (
	maxChatMessageLength = 1000

	streamMoodContext    = 3
	streamEmotionContext = 2
	simpleMoodContext    = 5
	simpleEmotionContext = 5
)

// Completer talks to a chat-completion model.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	// Stream calls onChunk for every piece of the reply and returns the
	// full text once the model is done.
	Stream(ctx context.Context, system, user string, onChunk func(string) error) (string, error)
}

// LangchainCompleter is a Completer backed by any OpenAI-compatible API.
type LangchainCompleter struct {
	model     llms.Model
	maxTokens int
}

// NewLangchainCompleter returns ErrChatNotConfigured when apiKey is empty.
func NewLangchainCompleter(apiKey, baseURL, model string, maxTokens int) (*LangchainCompleter, error) {
	if apiKey == "" {
		return nil, ErrChatNotConfigured
	}
	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat client: %w", err)
	}
	return &LangchainCompleter{model: llm, maxTokens: maxTokens}, nil
}

func (c *LangchainCompleter) messages(system, user string) []llms.MessageContent {
	return []llms.MessageContent{
		{Role: schema.ChatMessageTypeSystem, Parts: []llms.ContentPart{llms.TextPart(system)}},
		{Role: schema.ChatMessageTypeHuman, Parts: []llms.ContentPart{llms.TextPart(user)}},
	}
}

func (c *LangchainCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, c.messages(system, user), llms.WithMaxTokens(c.maxTokens))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return resp.Choices[0].Content, nil
}

func (c *LangchainCompleter) Stream(ctx context.Context, system, user string, onChunk func(string) error) (string, error) {
	var full strings.Builder
	_, err := c.model.GenerateContent(ctx, c.messages(system, user),
		llms.WithMaxTokens(c.maxTokens),
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			text := string(chunk)
			full.WriteString(text)
			return onChunk(text)
		}),
	)
	return full.String(), err
}

// ChatChunk is one piece of a streamed reply. The last chunk of a failed
// stream carries Err.
type ChatChunk struct {
	Text string
	Err  error
}

// ChatService builds the assistant prompt from the user's recent records
// and proxies it to the model.
type ChatService struct {
	completer Completer
	records   *RecordStore
	history   *ChatHistory
	now       func() time.Time

	wg sync.WaitGroup
}

// NewChatService accepts a nil completer; every call then fails with
// ErrChatNotConfigured.
func NewChatService(completer Completer, records *RecordStore, history *ChatHistory) *ChatService {
	return &ChatService{
		completer: completer,
		records:   records,
		history:   history,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Configured reports whether a model is available.
func (s *ChatService) Configured() bool {
	return s.completer != nil
}

// History returns the caller's transcript.
func (s *ChatService) History(ctx context.Context, sess models.Session) []models.ChatMessage {
	return s.history.Get(ctx, sess.Owner())
}

// ClearHistory drops the caller's transcript.
func (s *ChatService) ClearHistory(ctx context.Context, sess models.Session) error {
	return s.history.Clear(ctx, sess.Owner())
}

// ChatReply is a complete assistant answer.
type ChatReply struct {
	Message string `json:"message"`
	Crisis  bool   `json:"crisis,omitempty"`
}

// Reply answers in one piece using the detailed prompt.
func (s *ChatService) Reply(ctx context.Context, sess models.Session, req models.ChatRequest) (ChatReply, error) {
	if s.completer == nil {
		return ChatReply{}, ErrChatNotConfigured
	}
	message, err := chatMessage(req)
	if err != nil {
		return ChatReply{}, err
	}
	moods := s.records.GetMoods(ctx, sess, simpleMoodContext)
	emotions := s.records.GetEmotions(ctx, sess, simpleEmotionContext)
	system := BuildDetailedPrompt(sess, req, moods, emotions)
	system, crisis := withCrisisNote(sess, system, message)

	reply, err := s.completer.Complete(ctx, system, message)
	if err != nil {
		logger.Log.Errorw("Chat completion failed", "user_id", sess.Owner(), "error", err)
		return ChatReply{}, err
	}
	s.record(ctx, sess, message, reply)
	return ChatReply{Message: reply, Crisis: crisis}, nil
}

// Stream answers chunk by chunk on the returned channel, which is closed
// when the reply is complete, failed or ctx was cancelled.
func (s *ChatService) Stream(ctx context.Context, sess models.Session, req models.ChatRequest) (<-chan ChatChunk, error) {
	if s.completer == nil {
		return nil, ErrChatNotConfigured
	}
	message, err := chatMessage(req)
	if err != nil {
		return nil, err
	}
	moods := s.records.GetMoods(ctx, sess, streamMoodContext)
	emotions := s.records.GetEmotions(ctx, sess, streamEmotionContext)
	system := BuildConcisePrompt(sess, req, moods, emotions)
	system, _ = withCrisisNote(sess, system, message)

	out := make(chan ChatChunk)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(out)

		full, err := s.completer.Stream(ctx, system, message, func(text string) error {
			select {
			case out <- ChatChunk{Text: text}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			logger.Log.Errorw("Chat stream failed", "user_id", sess.Owner(), "error", err)
			select {
			case out <- ChatChunk{Err: err}:
			case <-ctx.Done():
			}
			return
		}
		s.record(context.WithoutCancel(ctx), sess, message, full)
	}()
	return out, nil
}

// Wait blocks until every in-flight stream has finished.
func (s *ChatService) Wait() {
	s.wg.Wait()
}

func (s *ChatService) record(ctx context.Context, sess models.Session, message, reply string) {
	now := s.now()
	err := s.history.Append(ctx, sess.Owner(),
		models.ChatMessage{Role: models.ChatRoleUser, Content: message, CreatedAt: now},
		models.ChatMessage{Role: models.ChatRoleAssistant, Content: reply, CreatedAt: now},
	)
	if err != nil {
		logger.Log.Warnw("Failed to save chat history", "user_id", sess.Owner(), "error", err)
	}
}

const crisisNote = `

ALERT: The user's message contains possible self-harm language. Respond with care, ` +
	`acknowledge their feelings, and clearly encourage them to contact a crisis line, ` +
	`emergency services or someone they trust right now.`

// withCrisisNote appends crisisNote to system when message shows signs of
// self-harm. Matched phrases are logged, the message itself is not.
func withCrisisNote(sess models.Session, system, message string) (string, bool) {
	crisis, matched := DetectSelfHarm(message)
	if !crisis {
		return system, false
	}
	logger.Log.Warnw("Self-harm language detected in chat message", "user_id", sess.Owner(), "matched", matched)
	return system + crisisNote, true
}

func chatMessage(req models.ChatRequest) (string, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return "", fmt.Errorf("%w: message is required", ErrInvalidEntry)
	}
	return TruncateMessage(message), nil
}

// TruncateMessage caps a message at 1000 characters, marking the cut
// with "...".
func TruncateMessage(message string) string {
	runes := []rune(message)
	if len(runes) <= maxChatMessageLength {
		return message
	}
	return string(runes[:maxChatMessageLength]) + "..."
}

const promptRules = `You are a mental health assistant for university students.

RULES:
- Do NOT greet the user at the beginning (no "Hi", "Hello", etc).
- Start immediately with help or support.
- Be supportive, empathetic, concise, and culturally sensitive.
- Never provide medical diagnoses.
- Speak in a simple and comforting style.
`

// BuildConcisePrompt is the short system prompt used for streamed replies.
func BuildConcisePrompt(sess models.Session, req models.ChatRequest, moods []models.MoodEntry, emotions []models.EmotionEntry) string {
	var b strings.Builder
	b.WriteString(promptRules)
	fmt.Fprintf(&b, "USER: %s (%s)\n", orDefault(req.UserName, "Anonymous"), orDefault(displayEmail(sess, req), "No email"))
	if len(moods) > 0 {
		parts := make([]string, 0, len(moods))
		for _, m := range moods {
			parts = append(parts, fmt.Sprintf("%s (%d/10)", m.Mood, m.Intensity))
		}
		fmt.Fprintf(&b, "MOOD: Recent moods: %s\n", strings.Join(parts, ", "))
	}
	if len(emotions) > 0 {
		parts := make([]string, 0, len(emotions))
		for _, e := range emotions {
			parts = append(parts, e.Emotion)
		}
		fmt.Fprintf(&b, "EMOTIONS: Recent emotions: %s\n", strings.Join(parts, ", "))
	}
	if sess.SpecialAccess {
		b.WriteString("NOTE: This is the demo account. Provide personalized responses.\n")
	}
	b.WriteString("\nBe supportive, empathetic, concise, and culturally sensitive. Never provide medical diagnoses.")
	return b.String()
}

// BuildDetailedPrompt is the system prompt of the non-streaming endpoint.
// It carries the profile and dated history.
func BuildDetailedPrompt(sess models.Session, req models.ChatRequest, moods []models.MoodEntry, emotions []models.EmotionEntry) string {
	var b strings.Builder
	b.WriteString(promptRules)

	b.WriteString("\nUSER PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orDefault(req.UserName, "Anonymous user"))
	fmt.Fprintf(&b, "- Email: %s\n", orDefault(displayEmail(sess, req), "Not provided"))
	fmt.Fprintf(&b, "- User ID: %s\n", sess.Owner())
	if req.UserProfile != nil {
		if req.UserProfile.Bio != "" {
			fmt.Fprintf(&b, "- Bio: %s\n", req.UserProfile.Bio)
		}
		if req.UserProfile.ProfileImage != "" {
			b.WriteString("- Has profile image: yes\n")
		}
	}

	b.WriteString("\nUSER MENTAL HEALTH DATA:\n")
	if len(moods) > 0 {
		parts := make([]string, 0, len(moods))
		for _, m := range moods {
			parts = append(parts, fmt.Sprintf("%s: %s (%d/10)", m.Date, m.Mood, m.Intensity))
		}
		fmt.Fprintf(&b, "Recent moods: %s\n", strings.Join(parts, ", "))
	} else {
		b.WriteString("No recent mood data available.\n")
	}
	if len(emotions) > 0 {
		parts := make([]string, 0, len(emotions))
		for _, e := range emotions {
			parts = append(parts, fmt.Sprintf("%s: %s (%d%%)", e.Date, e.Emotion, int(math.Round(e.Confidence*100))))
		}
		fmt.Fprintf(&b, "Recent emotions: %s\n", strings.Join(parts, ", "))
	} else {
		b.WriteString("No recent emotion data available.\n")
	}
	if sess.SpecialAccess {
		b.WriteString("NOTE: This is the demo account. Provide extra detailed and personalized responses.\n")
	}

	b.WriteString(`
INSTRUCTIONS:
1. Provide supportive, empathetic responses about mental health
2. Never provide medical diagnoses
3. Keep responses concise and helpful
4. If the user appears in crisis, encourage them to seek professional help
5. Tailor your responses to the user's recent mood and emotion data when relevant
6. Be respectful of the user's cultural context and sensitivities`)
	return b.String()
}

// displayEmail prefers the authenticated email over the one in the body.
func displayEmail(sess models.Session, req models.ChatRequest) string {
	if sess.Email != "" {
		return sess.Email
	}
	return req.UserEmail
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AnshRaj112/serenify-mood/internal/database"
	"github.com/AnshRaj112/serenify-mood/internal/logger"
	"github.com/AnshRaj112/serenify-mood/internal/models"
	"github.com/AnshRaj112/serenify-mood/pkg/utils"
)

// SpecialUserID is the fixed id of the sample-data demo account.
const SpecialUserID = "special_user_123"

// SpecialAccount configures the demo account that sees sample data.
// An empty Email disables it.
type SpecialAccount struct {
	Email    string
	Password string
	Name     string
	Bio      string
	ImageURL string
}

// SignUpInput is the sign-up form.
type SignUpInput struct {
	Email           string
	Password        string
	Name            string
	ProfileImageURL string
}

// AuthResult is returned by a successful sign-up or sign-in.
type AuthResult struct {
	Token   string         `json:"token"`
	Session models.Session `json:"session"`
	Profile models.Profile `json:"profile"`
}

// AuthService manages the registeredUsers list and issues sessions.
type AuthService struct {
	store    database.Store
	sessions *SessionManager
	profiles *ProfileService
	special  SpecialAccount
	now      func() time.Time

	mu sync.Mutex
}

func NewAuthService(store database.Store, sessions *SessionManager, profiles *ProfileService, special SpecialAccount) *AuthService {
	special.Email = utils.NormalizeEmail(special.Email)
	return &AuthService{
		store:    store,
		sessions: sessions,
		profiles: profiles,
		special:  special,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (a *AuthService) loadUsers(ctx context.Context) ([]models.RegisteredUser, error) {
	var users []models.RegisteredUser
	if err := loadJSON(ctx, a.store, KeyRegisteredUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func findUserByEmail(users []models.RegisteredUser, email string) (models.RegisteredUser, bool) {
	for _, u := range users {
		if u.Email == email {
			return u, true
		}
	}
	return models.RegisteredUser{}, false
}

// EnsureSpecialAccount seeds the demo account and its profile when it is
// configured and not registered yet.
func (a *AuthService) EnsureSpecialAccount(ctx context.Context) error {
	if a.special.Email == "" || a.special.Password == "" {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	users, err := a.loadUsers(ctx)
	if err != nil {
		return err
	}
	if _, ok := findUserByEmail(users, a.special.Email); ok {
		return nil
	}

	hash, err := utils.HashPassword(a.special.Password)
	if err != nil {
		return err
	}
	user := models.RegisteredUser{
		ID:            SpecialUserID,
		Email:         a.special.Email,
		PasswordHash:  hash,
		Name:          a.special.Name,
		SpecialAccess: true,
		CreatedAt:     a.now(),
	}
	users = append(users, user)
	if err := saveJSON(ctx, a.store, KeyRegisteredUsers, users, 0); err != nil {
		return err
	}

	if _, err := a.profiles.EnsureProfile(ctx, user, a.special.Bio, a.special.ImageURL); err != nil {
		return err
	}
	logger.Log.Infow("Seeded special account", "email", user.Email)
	return nil
}

// SignUp registers a new user and signs them in.
func (a *AuthService) SignUp(ctx context.Context, in SignUpInput) (AuthResult, error) {
	email := utils.NormalizeEmail(in.Email)
	if err := utils.ValidateEmail(email); err != nil {
		return AuthResult{}, err
	}
	if err := utils.ValidatePassword(in.Password); err != nil {
		return AuthResult{}, err
	}
	if err := utils.ValidateName(in.Name); err != nil {
		return AuthResult{}, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, err
	}

	a.mu.Lock()
	users, err := a.loadUsers(ctx)
	if err != nil {
		a.mu.Unlock()
		return AuthResult{}, err
	}
	if _, ok := findUserByEmail(users, email); ok || email == a.special.Email {
		a.mu.Unlock()
		return AuthResult{}, ErrEmailTaken
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	user := models.RegisteredUser{
		ID:           "user_" + uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CreatedAt:    a.now(),
	}
	users = append(users, user)
	err = saveJSON(ctx, a.store, KeyRegisteredUsers, users, 0)
	a.mu.Unlock()
	if err != nil {
		return AuthResult{}, err
	}

	profile, err := a.profiles.EnsureProfile(ctx, user, "", in.ProfileImageURL)
	if err != nil {
		return AuthResult{}, err
	}
	return a.issue(ctx, user, profile)
}

// SignIn verifies credentials and issues a fresh session. Unknown emails
// and wrong passwords both report ErrInvalidCredentials.
func (a *AuthService) SignIn(ctx context.Context, email, password string) (AuthResult, error) {
	email = utils.NormalizeEmail(email)

	users, err := a.loadUsers(ctx)
	if err != nil {
		return AuthResult{}, err
	}
	user, ok := findUserByEmail(users, email)
	if !ok {
		return AuthResult{}, ErrInvalidCredentials
	}
	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		logger.Log.Warnw("Stored password hash is unreadable", "user_id", user.ID, "error", err)
		return AuthResult{}, ErrInvalidCredentials
	}
	if !valid {
		return AuthResult{}, ErrInvalidCredentials
	}

	bio, image := "", ""
	if user.SpecialAccess {
		bio, image = a.special.Bio, a.special.ImageURL
	}
	profile, err := a.profiles.EnsureProfile(ctx, user, bio, image)
	if err != nil {
		return AuthResult{}, err
	}
	return a.issue(ctx, user, profile)
}

// Logout drops the session behind token.
func (a *AuthService) Logout(ctx context.Context, token string) error {
	return a.sessions.InvalidateSession(ctx, token)
}

// Resolve maps a bearer token to its session.
func (a *AuthService) Resolve(ctx context.Context, token string) (models.Session, bool, error) {
	return a.sessions.ValidateSession(ctx, token)
}

// Refresh extends the session behind token by the full TTL.
func (a *AuthService) Refresh(ctx context.Context, token string) error {
	return a.sessions.RefreshSession(ctx, token)
}

func (a *AuthService) issue(ctx context.Context, user models.RegisteredUser, profile models.Profile) (AuthResult, error) {
	sess := models.Session{
		UserID:        user.ID,
		Email:         user.Email,
		SpecialAccess: user.SpecialAccess,
	}
	token, err := a.sessions.CreateSession(ctx, sess)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, Session: sess, Profile: profile}, nil
}

package services

import (
	"context"
	"strings"
	"time"

	"github.com/AnshRaj112/serenify-mood/internal/database"
	"github.com/AnshRaj112/serenify-mood/internal/models"
	"github.com/AnshRaj112/serenify-mood/pkg/utils"
)

// ProfileService reads and writes profile_<id> documents.
type ProfileService struct {
	store database.Store
	now   func() time.Time
}

func NewProfileService(store database.Store) *ProfileService {
	return &ProfileService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// GetProfile returns the user's profile; ok is false when none exists.
func (p *ProfileService) GetProfile(ctx context.Context, userID string) (models.Profile, bool, error) {
	var profile *models.Profile
	if err := loadJSON(ctx, p.store, ProfileKey(userID), &profile); err != nil {
		return models.Profile{}, false, err
	}
	if profile == nil {
		return models.Profile{}, false, nil
	}
	return *profile, true, nil
}

// EnsureProfile returns the stored profile of user, creating it from the
// account fields first if it does not exist.
func (p *ProfileService) EnsureProfile(ctx context.Context, user models.RegisteredUser, bio, imageURL string) (models.Profile, error) {
	existing, ok, err := p.GetProfile(ctx, user.ID)
	if err != nil {
		return models.Profile{}, err
	}
	if ok {
		return existing, nil
	}
	now := p.now()
	profile := models.Profile{
		ID:              user.ID,
		Email:           user.Email,
		Name:            user.Name,
		Bio:             bio,
		ProfileImageURL: imageURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := saveJSON(ctx, p.store, ProfileKey(user.ID), profile, 0); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// UpdateProfile applies the non-nil fields of upd and stamps updated_at.
// A session without a stored profile gets a fresh one.
func (p *ProfileService) UpdateProfile(ctx context.Context, sess models.Session, upd models.ProfileUpdate) (models.Profile, error) {
	if upd.Name != nil {
		if err := utils.ValidateName(*upd.Name); err != nil {
			return models.Profile{}, err
		}
	}

	profile, ok, err := p.GetProfile(ctx, sess.Owner())
	if err != nil {
		return models.Profile{}, err
	}
	now := p.now()
	if !ok {
		profile = models.Profile{ID: sess.Owner(), Email: sess.Email, CreatedAt: now}
	}
	if upd.Name != nil {
		profile.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Bio != nil {
		profile.Bio = *upd.Bio
	}
	if upd.ProfileImageURL != nil {
		profile.ProfileImageURL = *upd.ProfileImageURL
	}
	profile.UpdatedAt = now

	if err := saveJSON(ctx, p.store, ProfileKey(sess.Owner()), profile, 0); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

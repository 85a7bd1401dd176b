// Package profiles manages the per-user display profile.
package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/muhammadolammi/resumereview/internal/apperr"
	"github.com/muhammadolammi/resumereview/internal/database"
)

const defaultName = "User"

type Store interface {
	GetProfile(ctx context.Context, id uuid.UUID) (database.Profile, error)
	CreateProfile(ctx context.Context, arg database.CreateProfileParams) (database.Profile, error)
	UpdateProfile(ctx context.Context, arg database.UpdateProfileParams) (database.Profile, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
}

type Profile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func fromDB(p database.Profile) *Profile {
	return &Profile{
		ID:        p.ID,
		Name:      p.Name,
		AvatarURL: p.AvatarUrl,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetOrCreate returns the owner's profile, creating it on first access.
func (s *Service) GetOrCreate(ctx context.Context, owner uuid.UUID, email string) (*Profile, error) {
	p, err := s.store.GetProfile(ctx, owner)
	if err == nil {
		return fromDB(p), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Internal("Internal server error", fmt.Errorf("get profile: %w", err))
	}

	accountName := ""
	if u, err := s.store.GetUserByID(ctx, owner); err == nil {
		accountName = u.Name
	}
	p, err = s.store.CreateProfile(ctx, database.CreateProfileParams{
		ID:   owner,
		Name: DisplayName(accountName, email),
	})
	if err != nil {
		return nil, apperr.Internal("Internal server error", fmt.Errorf("create profile: %w", err))
	}
	return fromDB(p), nil
}

type UpdateInput struct {
	Name      string
	AvatarURL string
}

// Update edits the profile, inserting it if it does not exist yet.
func (s *Service) Update(ctx context.Context, owner uuid.UUID, in UpdateInput) (*Profile, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("Name is required")
	}
	params := database.UpdateProfileParams{
		ID:        owner,
		Name:      name,
		AvatarUrl: strings.TrimSpace(in.AvatarURL),
	}

	p, err := s.store.UpdateProfile(ctx, params)
	if errors.Is(err, sql.ErrNoRows) {
		p, err = s.store.CreateProfile(ctx, database.CreateProfileParams(params))
		// A concurrent first visit may have created the row with defaults.
		if err == nil && (p.Name != params.Name || p.AvatarUrl != params.AvatarUrl) {
			p, err = s.store.UpdateProfile(ctx, params)
		}
	}
	if err != nil {
		return nil, apperr.Internal("Internal server error", fmt.Errorf("update profile: %w", err))
	}
	return fromDB(p), nil
}

// DisplayName picks the account name, then the email local part, then "User".
func DisplayName(accountName, email string) string {
	if name := strings.TrimSpace(accountName); name != "" {
		return name
	}
	if local, _, ok := strings.Cut(email, "@"); ok && strings.TrimSpace(local) != "" {
		return strings.TrimSpace(local)
	}
	return defaultName
}

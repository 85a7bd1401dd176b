package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/muhammadolammi/resumereview/internal/apperr"
	"github.com/muhammadolammi/resumereview/internal/database"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordLen = 72

	msgInvalidLogin = "Invalid login credentials"
	msgInternal     = "Internal server error"
)

type UserStore interface {
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	GetUserByEmail(ctx context.Context, email string) (database.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
}

type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

type Session struct {
	User User `json:"user"`
	TokenPair
}

type Service struct {
	users  UserStore
	tokens *Tokens
	cost   int
}

func NewService(users UserStore, tokens *Tokens) *Service {
	return &Service{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
}

func (s *Service) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, apperr.Validation("Invalid email address")
	}
	if len(password) < minPasswordLen {
		return nil, apperr.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	}
	if len(password) > maxPasswordLen {
		return nil, apperr.Validation(fmt.Sprintf("Password must be at most %d characters", maxPasswordLen))
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, accountExists()
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Internal(msgInternal, fmt.Errorf("lookup user: %w", err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperr.Internal(msgInternal, fmt.Errorf("hash password: %w", err))
	}
	u, err := s.users.CreateUser(ctx, database.CreateUserParams{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
	})
	if isUniqueViolation(err) {
		return nil, accountExists()
	}
	if err != nil {
		return nil, apperr.Internal(msgInternal, fmt.Errorf("create user: %w", err))
	}
	return s.session(u)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Unauthorized(msgInvalidLogin)
	}
	if err != nil {
		return nil, apperr.Internal(msgInternal, fmt.Errorf("lookup user: %w", err))
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Unauthorized(msgInvalidLogin)
	}
	return s.session(u)
}

// Refresh exchanges a refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	id, err := s.tokens.Parse(refreshToken, TypeRefresh)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindUnauthorized, Message: "Invalid refresh token", Err: err}
	}
	u, err := s.users.GetUserByID(ctx, id.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}
	if err != nil {
		return nil, apperr.Internal(msgInternal, fmt.Errorf("lookup user: %w", err))
	}
	return s.session(u)
}

func (s *Service) session(u database.User) (*Session, error) {
	pair, err := s.tokens.Issue(Identity{ID: u.ID, Email: u.Email})
	if err != nil {
		return nil, apperr.Internal(msgInternal, err)
	}
	return &Session{
		User:      User{ID: u.ID, Email: u.Email, Name: u.Name},
		TokenPair: *pair,
	}, nil
}

func accountExists() error {
	return apperr.Conflict("An account with this email already exists", "")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@")+1:], ".")
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

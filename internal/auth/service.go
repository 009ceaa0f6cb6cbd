// Package auth issues and checks session tokens.
//
// Tokens are HS256 JWTs whose jti names a row in the sessions table, so a
// token stops working as soon as its session row is deleted.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"realestate-hub/internal/database"
	"realestate-hub/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNoSession          = errors.New("no active session")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactive           = errors.New("user is inactive")
	ErrEmailTaken         = errors.New("email already registered")
	ErrRoleNotAllowed     = errors.New("role cannot be self-assigned")
)

// Store is the persistence the auth service needs
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetAgentByUserID(ctx context.Context, userID string) (*models.Agent, error)
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// Profile holds the sign-up fields besides credentials
type Profile struct {
	FullName string
	Phone    string
	Role     models.UserRole
}

// Session is the result of a successful sign-in
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Identity  *Identity `json:"user"`
}

type Service struct {
	store  Store
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

func NewService(store Store, secret string, ttl time.Duration) *Service {
	return &Service{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

// WithBcryptCost sets the password hashing cost
func (s *Service) WithBcryptCost(cost int) *Service {
	s.cost = cost
	return s
}

// WithClock replaces the time source
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SignUp creates an active user. Only the client and agent roles may be chosen;
// agents get their profile row at the same time.
func (s *Service) SignUp(ctx context.Context, email, password string, profile Profile) (*models.User, error) {
	role := profile.Role
	if role == "" {
		role = models.RoleClient
	}
	if role != models.RoleClient && role != models.RoleAgent {
		return nil, ErrRoleNotAllowed
	}

	user, err := s.NewUser(email, password, profile.FullName, profile.Phone, role)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// NewUser builds an unsaved active user with a hashed password. Admin user
// creation and seeding go through it too.
func (s *Service) NewUser(email, password, fullName, phone string, role models.UserRole) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &models.User{
		FullName:     strings.TrimSpace(fullName),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Phone:        strings.TrimSpace(phone),
		Role:         role,
		Status:       models.UserStatusActive,
		PasswordHash: string(hash),
	}, nil
}

// SignInWithPassword checks the credentials and opens a new session
func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrInactive
	}

	now := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl).UTC(),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID,
		ID:        session.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	identity, err := s.identityFor(ctx, user, session.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: signed, ExpiresAt: session.ExpiresAt, Identity: identity}, nil
}

// GetSession resolves a token to the identity behind it. Any token that is
// malformed, expired, revoked or belongs to an inactive user yields ErrNoSession.
func (s *Service) GetSession(ctx context.Context, tokenStr string) (*Identity, error) {
	claims, err := s.parse(tokenStr)
	if err != nil {
		return nil, ErrNoSession
	}

	session, err := s.store.GetSession(ctx, claims.ID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.UserID != claims.Subject || session.Expired(s.now()) {
		return nil, ErrNoSession
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive() {
		return nil, ErrNoSession
	}
	return s.identityFor(ctx, user, session.ID)
}

// SignOut revokes the session behind the token. Unknown tokens are ignored.
func (s *Service) SignOut(ctx context.Context, tokenStr string) error {
	claims, err := s.parse(tokenStr)
	if err != nil {
		return nil
	}
	return s.store.DeleteSession(ctx, claims.ID)
}

func (s *Service) parse(tokenStr string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrNoSession
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, ErrNoSession
	}
	return claims, nil
}

func (s *Service) identityFor(ctx context.Context, user *models.User, sessionID string) (*Identity, error) {
	identity := &Identity{
		UserID:    user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      user.Role,
		SessionID: sessionID,
	}
	// a demoted agent keeps its profile row but loses agent access
	if user.Role != models.RoleAgent {
		return identity, nil
	}
	agent, err := s.store.GetAgentByUserID(ctx, user.ID)
	switch {
	case err == nil:
		identity.AgentID = agent.ID
	case errors.Is(err, database.ErrNotFound):
	default:
		return nil, fmt.Errorf("failed to load agent profile: %w", err)
	}
	return identity, nil
}

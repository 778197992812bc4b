package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"plansey/internal/model"
	"plansey/internal/repository"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt ignores anything longer
)

// RegisterInput represents data required to open an account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      model.Role
}

// Identity is what a verified session token says about its bearer.
type Identity struct {
	UserID uint
	Role   model.Role
}

// Session is an issued token.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Role model.Role `json:"role"`
}

// AuthService registers users and issues and verifies session tokens.
type AuthService struct {
	users  *repository.UserRepository
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

func NewAuthService(users *repository.UserRepository, secret string, ttl time.Duration, cost int) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   cost,
		now:    time.Now,
	}
}

// Register creates the user together with the record of the chosen role.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)

	if email == "" || in.Password == "" || firstName == "" || in.Role == "" {
		return nil, fmt.Errorf("%w: email, password, first name and role are required", ErrBadArguments)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrBadArguments)
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: invalid role", ErrBadArguments)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrBadArguments, minPasswordLen)
	}
	if len(in.Password) > maxPasswordLen {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrBadArguments, maxPasswordLen)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email is already registered", ErrAlreadyExists)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var last *string
	if lastName != "" {
		last = &lastName
	}

	user := &model.User{
		Email:          email,
		PasswordHash:   string(hash),
		FirstName:      firstName,
		LastName:       last,
		DefaultAccount: in.Role,
		IsActive:       true,
		IsFirstLogin:   true,
	}

	var (
		planner     *model.Planner
		vendor      *model.Vendor
		storyteller *model.Storyteller
	)
	switch in.Role {
	case model.RolePlanner:
		planner = &model.Planner{FirstName: firstName, LastName: last}
	case model.RoleVendor:
		vendor = &model.Vendor{Name: user.DisplayName(), Email: email, Type: "Basic"}
	case model.RoleStoryteller:
		storyteller = &model.Storyteller{FirstName: firstName, LastName: last}
	}

	if err := s.users.CreateWithRole(ctx, user, planner, vendor, storyteller); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email is already registered", ErrAlreadyExists)
		}
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrBadArguments)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	token, expiresAt, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) issue(user *model.User) (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: user.DefaultAccount,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// ParseToken verifies a session token and returns its identity.
func (s *AuthService) ParseToken(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrUnauthenticated
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return Identity{}, fmt.Errorf("%w: invalid subject", ErrUnauthenticated)
	}
	return Identity{UserID: uint(id), Role: claims.Role}, nil
}

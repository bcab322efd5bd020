package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nyat/backend/internal/config"
	"github.com/nyat/backend/internal/db"
	"github.com/nyat/backend/internal/model"
)

const bearerPrefix = "Bearer "

var (
	ErrUsernameExists = errors.New("username was taken")
	ErrBadCredentials = errors.New("invalid username or password")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadAuthHeader  = errors.New("malformed authorization header")
	ErrMisconfigured  = errors.New("auth config invalid")
)

// UserRepository is the slice of storage the auth and chat services need.
type UserRepository interface {
	CreateUser(ctx context.Context, username, passwordDigest string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

type AuthService struct {
	users  UserRepository
	hasher *PasswordHasher

	tokenSecret []byte
	tokenTTL    time.Duration
}

// sessionClaims is the token payload: the subject account plus the
// validity window. There is no server-side session record.
type sessionClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

func NewAuthService(users UserRepository, hasher *PasswordHasher, cfg config.TokenConfig) (*AuthService, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("%w: TOKEN_SECRET is required", ErrMisconfigured)
	}

	ttl, err := time.ParseDuration(cfg.TTL)
	if err != nil || ttl < 0 {
		return nil, fmt.Errorf("%w: invalid TOKEN_TTL", ErrMisconfigured)
	}

	return &AuthService{
		users:       users,
		hasher:      hasher,
		tokenSecret: []byte(cfg.Secret),
		tokenTTL:    ttl,
	}, nil
}

// Register creates a new account and returns a session token for it.
// On success exactly one user row exists; every failure path leaves
// storage untouched.
func (s *AuthService) Register(ctx context.Context, username, password string) (string, error) {
	creds, err := ParseCredentials(username, password)
	if err != nil {
		return "", err
	}

	// Fast duplicate check before the expensive hash. The unique index on
	// username stays the authoritative gate below.
	if _, err := s.users.GetUserByUsername(ctx, creds.Username); err == nil {
		return "", ErrUsernameExists
	} else if !db.IsNoRows(err) {
		return "", fmt.Errorf("checking username: %w", err)
	}

	digest, err := s.hasher.Hash(ctx, creds.Password)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, creds.Username, digest)
	if err != nil {
		if db.IsUniqueViolation(err) {
			// A concurrent registration won between the check and the insert.
			return "", ErrUsernameExists
		}
		return "", fmt.Errorf("creating user: %w", err)
	}

	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return s.IssueToken(user.ID)
}

// Login authenticates an existing account. An unknown username and a
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if db.IsNoRows(err) {
			return "", ErrBadCredentials
		}
		return "", fmt.Errorf("loading user: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordDigest)
	if err != nil {
		return "", fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return "", ErrBadCredentials
	}

	return s.IssueToken(user.ID)
}

// IssueToken signs a stateless HS256 token valid for the configured TTL.
func (s *AuthService) IssueToken(userID int64) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.tokenSecret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates signature and validity window and resolves the
// subject. Failure reasons are kept in the wrapped error for diagnostics;
// all of them unwrap to ErrUnauthorized, which is the only thing the
// transport boundary may reveal.
func (s *AuthService) VerifyToken(tokenStr string) (*model.AuthUser, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.tokenSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: token expired", ErrUnauthorized)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: signature mismatch", ErrUnauthorized)
		default:
			return nil, fmt.Errorf("%w: malformed token", ErrUnauthorized)
		}
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing subject", ErrUnauthorized)
	}

	return &model.AuthUser{ID: claims.UserID}, nil
}

// BearerToken pulls the raw token out of an Authorization header value.
// Transport-agnostic: middleware for any framework can wrap it.
// An absent header is ErrUnauthorized; a present but malformed one is
// ErrBadAuthHeader.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrUnauthorized
	}
	if !utf8.ValidString(header) || !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrBadAuthHeader
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", ErrBadAuthHeader
	}
	return token, nil
}

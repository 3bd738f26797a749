package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/segyhp/loandesk/internal/domain"
	"github.com/segyhp/loandesk/pkg/response"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// ErrSessionNotFound is returned when a token is unknown or has expired
var ErrSessionNotFound = errors.New("session not found")

// Context identifies the caller of a request
type Context struct {
	AgentID string `json:"agentId"`
	Role    string `json:"role"`
}

type ctxKey struct{}

func WithContext(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, ac)
}

// FromContext returns the caller attached by Middleware
func FromContext(ctx context.Context) (Context, bool) {
	ac, ok := ctx.Value(ctxKey{}).(Context)
	return ac, ok
}

// SessionStore keeps login sessions keyed by an opaque bearer token
type SessionStore interface {
	Create(ctx context.Context, ac Context) (string, error)
	Get(ctx context.Context, token string) (Context, error)
	Delete(ctx context.Context, token string) error
}

type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(token string) string {
	return "session:" + token
}

func (s *RedisSessionStore) Create(ctx context.Context, ac Context) (string, error) {
	payload, err := json.Marshal(ac)
	if err != nil {
		return "", err
	}

	token := uuid.NewString()
	if err := s.client.Set(ctx, sessionKey(token), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (Context, error) {
	raw, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Context{}, ErrSessionNotFound
	}
	if err != nil {
		return Context{}, err
	}

	var ac Context
	if err := json.Unmarshal(raw, &ac); err != nil {
		return Context{}, fmt.Errorf("decode session: %w", err)
	}
	return ac, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Middleware rejects requests without a live session and attaches the caller to
// the request context.
func Middleware(store SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				response.Unauthorized(w, "Missing bearer token")
				return
			}

			ac, err := store.Get(r.Context(), token)
			if errors.Is(err, ErrSessionNotFound) {
				response.Unauthorized(w, "Session expired, please log in again")
				return
			}
			if err != nil {
				response.InternalServerError(w, "Failed to load session", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), ac)))
		})
	}
}

// RequireRole lets the request through only when the caller holds one of roles.
// It must run after Middleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, ok := FromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Not logged in")
				return
			}
			for _, role := range roles {
				if ac.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Forbidden(w, "Access denied for role "+ac.Role)
		})
	}
}

// HashCode hashes an agent access code for storage
func HashCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}

// Roles a session may carry
var Roles = []string{domain.RoleOffice, domain.RoleExecutive}

// Package session implements the login/restore/logout lifecycle. Logging in
// persists the chosen display name as a session record, opens the per-user
// document store, and upserts the user document. Restoring replays the same
// sequence from a stored session id; failures roll the session record back
// and leave the caller unauthenticated instead of crashing.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/planpin/backend/domain"
	"github.com/planpin/backend/repository"
)

// Result is what a successful login or restore hands back: the session, the
// user document, and a signed token the client presents on later requests.
type Result struct {
	Session *domain.Session `json:"session"`
	User    *domain.User    `json:"user"`
	Token   string          `json:"token,omitempty"`
}

type restoreCall struct {
	done chan struct{}
	res  *Result
	err  error
}

type UseCase struct {
	repos     repository.Provider
	sessions  repository.SessionRepository
	ttl       time.Duration
	jwtSecret []byte
	jwtIssuer string
	logger    *zap.Logger

	mu       sync.Mutex
	restores map[string]*restoreCall
}

type Config struct {
	TTL       time.Duration
	JWTSecret string
	JWTIssuer string
}

func New(repos repository.Provider, sessions repository.SessionRepository, cfg Config, logger *zap.Logger) *UseCase {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		repos:     repos,
		sessions:  sessions,
		ttl:       cfg.TTL,
		jwtSecret: []byte(cfg.JWTSecret),
		jwtIssuer: cfg.JWTIssuer,
		logger:    logger,
		restores:  make(map[string]*restoreCall),
	}
}

// Login trims the display name, rejects empty input, persists the session
// record, opens the user's store and upserts the user document. Any failure
// after the session record is written deletes it again before surfacing the
// error, so a failed login never leaves a dangling authenticated state.
func (uc *UseCase) Login(ctx context.Context, name string) (*Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidPayload
	}
	if len(name) > 100 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "name too long")
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    name,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	user, err := uc.ensureUser(ctx, name)
	if err != nil {
		if delErr := uc.sessions.Delete(ctx, session.ID); delErr != nil {
			uc.logger.Warn("failed to roll back session record", zap.String("session_id", session.ID), zap.Error(delErr))
		}
		return nil, err
	}

	token, err := uc.issueToken(session)
	if err != nil {
		if delErr := uc.sessions.Delete(ctx, session.ID); delErr != nil {
			uc.logger.Warn("failed to roll back session record", zap.String("session_id", session.ID), zap.Error(delErr))
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to sign session token", err)
	}

	uc.logger.Info("user logged in", zap.String("user", name))
	return &Result{Session: session, User: user, Token: token}, nil
}

// Restore resolves a stored session back into an authenticated state,
// re-running the store-open and user-upsert sequence from Login. Concurrent
// restores for the same session id collapse into one call, since several
// lifecycle hooks may trigger it at once. A session that cannot be restored
// is cleared so the caller completes initialization unauthenticated.
func (uc *UseCase) Restore(ctx context.Context, sessionID string) (*Result, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}

	uc.mu.Lock()
	if call, inFlight := uc.restores[sessionID]; inFlight {
		uc.mu.Unlock()
		select {
		case <-call.done:
			return call.res, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &restoreCall{done: make(chan struct{})}
	uc.restores[sessionID] = call
	uc.mu.Unlock()

	call.res, call.err = uc.restore(ctx, sessionID)
	close(call.done)

	uc.mu.Lock()
	delete(uc.restores, sessionID)
	uc.mu.Unlock()

	return call.res, call.err
}

func (uc *UseCase) restore(ctx context.Context, sessionID string) (*Result, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}

	user, err := uc.ensureUser(ctx, session.UserID)
	if err != nil {
		// The persisted name is useless if its store cannot be opened;
		// clear it so the next start completes unauthenticated.
		if delErr := uc.sessions.Delete(ctx, sessionID); delErr != nil {
			uc.logger.Warn("failed to clear unrestorable session", zap.String("session_id", sessionID), zap.Error(delErr))
		}
		return nil, err
	}

	if err := uc.sessions.Extend(ctx, sessionID, int(uc.ttl.Seconds())); err != nil {
		uc.logger.Warn("failed to extend session ttl", zap.String("session_id", sessionID), zap.Error(err))
	}

	return &Result{Session: session, User: user}, nil
}

// Logout deletes the session record only. The user's store and its data
// stay on disk for the next login.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return uc.sessions.Delete(ctx, sessionID)
}

// ensureUser opens the user's store and upserts the user document. The
// upsert is unconditional; repeating it for an existing user is a no-op
// repeat-write, not a duplicate.
func (uc *UseCase) ensureUser(ctx context.Context, name string) (*domain.User, error) {
	users, err := uc.repos.Users(ctx, name)
	if err != nil {
		return nil, err
	}
	user := &domain.User{ID: name, CreatedAt: time.Now().UnixMilli()}
	if existing, err := users.GetByID(ctx, name); err == nil {
		user.CreatedAt = existing.CreatedAt
	}
	if err := users.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *UseCase) issueToken(session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    session.UserID,
		"session_id": session.ID,
		"iss":        uc.jwtIssuer,
		"exp":        session.ExpiresAt.Unix(),
		"iat":        session.CreatedAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(uc.jwtSecret)
}

// Package session holds the authenticated principal of the admin client.
//
// A Store is created once per process, validated once from durable storage,
// and handed down explicitly (see WithStore). It is the only writer of the
// persisted session record.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/and161185/movie-admin/internal/errs"
	"github.com/and161185/movie-admin/internal/model"
)

// Authenticator is the external login backend.
type Authenticator interface {
	// Login exchanges credentials for an access token.
	Login(ctx context.Context, creds model.Credentials) (accessToken string, err error)
	// Decode returns the profile behind the token the store currently holds.
	Decode(ctx context.Context) (model.Profile, error)
}

// Storage keeps the single serialized session record.
// Load returns errs.ErrNotFound when no record exists.
type Storage interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, record []byte) error
	Remove(ctx context.Context) error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store owns the session and its status.
type Store struct {
	auth    Authenticator
	storage Storage
	log     *zap.Logger
	now     func() time.Time

	validateOnce sync.Once

	mu     sync.RWMutex
	status Status
	sess   *model.Session
}

// NewStore returns a store in StatusChecking.
func NewStore(auth Authenticator, storage Storage, opts ...Option) *Store {
	s := &Store{
		auth:    auth,
		storage: storage,
		log:     zap.NewNop(),
		now:     time.Now,
		status:  StatusChecking,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Validate restores the persisted session and checks its expiry.
// Only the first call has any effect.
func (s *Store) Validate(ctx context.Context) {
	s.validateOnce.Do(func() { s.validate(ctx) })
}

func (s *Store) validate(ctx context.Context) {
	raw, err := s.storage.Load(ctx)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			s.log.Warn("session load failed", zap.Error(err))
		}
		s.set(StatusNotAuthenticated, nil)
		return
	}

	var sess model.Session
	if err := json.Unmarshal(raw, &sess); err != nil || strings.TrimSpace(sess.AccessToken) == "" {
		s.log.Warn("session record unreadable, discarding", zap.Error(err))
		s.Logout(ctx)
		return
	}
	if sess.Profile == nil {
		s.log.Info("session record has no profile, discarding")
		s.Logout(ctx)
		return
	}
	if sess.Profile.Expired(s.now()) {
		s.log.Info("session expired", zap.Time("expires_at", sess.Profile.ExpiresAt))
		s.Logout(ctx)
		return
	}
	sess.Profile.Permissions = nonNil(sess.Profile.Permissions)
	s.set(StatusAuthenticated, &sess)
}

// Login exchanges credentials, persists the token, then decodes the profile.
// Any failure leaves the store logged out and is returned wrapping errs.ErrUnauthorized.
func (s *Store) Login(ctx context.Context, creds model.Credentials) error {
	s.mu.Lock()
	s.status = StatusChecking
	s.mu.Unlock()

	token, err := s.auth.Login(ctx, creds)
	if err != nil {
		return s.fail(ctx, "login", err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return s.fail(ctx, "login", errors.New("empty access token"))
	}

	// Decode authenticates with the token held here.
	minimal := &model.Session{AccessToken: token}
	s.mu.Lock()
	s.sess = minimal
	s.mu.Unlock()
	if err := s.persist(ctx, minimal); err != nil {
		return s.fail(ctx, "persist", err)
	}

	profile, err := s.auth.Decode(ctx)
	if err != nil {
		return s.fail(ctx, "decode", err)
	}
	if profile.ExpiresAt.IsZero() {
		if exp, ok := TokenExpiry(token); ok {
			profile.ExpiresAt = exp
		}
	}
	profile.Permissions = nonNil(profile.Permissions)
	if profile.Expired(s.now()) {
		return s.fail(ctx, "decode", errs.ErrExpired)
	}

	full := &model.Session{AccessToken: token, Profile: &profile}
	if err := s.persist(ctx, full); err != nil {
		return s.fail(ctx, "persist", err)
	}
	s.set(StatusAuthenticated, full)
	s.log.Info("logged in",
		zap.String("user_id", profile.UserID),
		zap.String("role", profile.Role),
		zap.Time("expires_at", profile.ExpiresAt),
	)
	return nil
}

// Logout drops the session locally. It always succeeds from the caller's view;
// storage errors are only logged.
func (s *Store) Logout(ctx context.Context) {
	if err := s.storage.Remove(ctx); err != nil && !errors.Is(err, errs.ErrNotFound) {
		s.log.Warn("session remove failed", zap.Error(err))
	}
	s.set(StatusNotAuthenticated, nil)
}

// Status reports the current status.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// User returns a copy of the authenticated profile, or nil.
func (s *Store) User() *model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status != StatusAuthenticated || s.sess == nil || s.sess.Profile == nil {
		return nil
	}
	p := *s.sess.Profile
	p.Permissions = p.Permissions.Clone()
	return &p
}

// Permissions returns the authenticated profile's permissions; never nil.
func (s *Store) Permissions() model.PermissionSet {
	if u := s.User(); u != nil {
		return u.Permissions
	}
	return model.PermissionSet{}
}

// Token returns the held access token, including while a login is decoding.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess == nil {
		return ""
	}
	return s.sess.AccessToken
}

func (s *Store) set(st Status, sess *model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
	s.sess = sess
}

func (s *Store) persist(ctx context.Context, sess *model.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.storage.Save(ctx, b)
}

func (s *Store) fail(ctx context.Context, step string, err error) error {
	s.log.Warn("login failed", zap.String("step", step), zap.Error(err))
	s.Logout(ctx)
	if errors.Is(err, errs.ErrUnauthorized) {
		return fmt.Errorf("%s: %w", step, err)
	}
	return fmt.Errorf("%s: %w: %w", step, errs.ErrUnauthorized, err)
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
func TokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func nonNil(p model.PermissionSet) model.PermissionSet {
	if p == nil {
		return model.PermissionSet{}
	}
	return p
}

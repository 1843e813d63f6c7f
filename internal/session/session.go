// Package session holds the process-wide auth session: access and refresh
// tokens plus the stable per-installation device identifier. The session is
// mutated only by sign-in/out and the gateway's refresh protocol.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/openpaddock/muster/internal/store"
)

// Session is the one piece of genuinely shared mutable auth state. Tokens
// are persisted through the metadata repository so a session survives
// process restart.
type Session struct {
	mu             sync.Mutex
	accessToken    string
	refreshToken   string
	deviceID       string
	invalidated    bool
	meta           *store.Metadata
	onAuthRequired func()
}

func New(meta *store.Metadata) *Session {
	return &Session{meta: meta}
}

// OnAuthRequired registers the UI collaborator's "auth required" handler.
// The handler fires at most once per signed-in session, no matter how many
// concurrent calls hit an irrecoverable 401.
func (s *Session) OnAuthRequired(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAuthRequired = fn
}

// Load restores tokens and the device id from local metadata. A missing
// device id is generated and persisted, so every installation gets one
// stable identifier.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dev, err := s.meta.Get(ctx, store.MetaDeviceID)
	if err != nil {
		return err
	}
	if len(dev) == 0 {
		dev = []byte(uuid.NewString())
		if err := s.meta.Set(ctx, store.MetaDeviceID, dev); err != nil {
			return err
		}
	}
	s.deviceID = string(dev)

	access, err := s.meta.Get(ctx, store.MetaAccessToken)
	if err != nil {
		return err
	}
	refresh, err := s.meta.Get(ctx, store.MetaRefreshToken)
	if err != nil {
		return err
	}
	s.accessToken = string(access)
	s.refreshToken = string(refresh)
	s.invalidated = false
	return nil
}

// SignIn stores a fresh token pair from an explicit login.
func (s *Session) SignIn(ctx context.Context, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = false
	return s.setTokens(ctx, accessToken, refreshToken)
}

// SetTokens atomically replaces both tokens (the refresh protocol's commit).
func (s *Session) SetTokens(ctx context.Context, accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setTokens(ctx, accessToken, refreshToken)
}

func (s *Session) setTokens(ctx context.Context, accessToken, refreshToken string) error {
	if err := s.meta.Set(ctx, store.MetaAccessToken, []byte(accessToken)); err != nil {
		return err
	}
	if err := s.meta.Set(ctx, store.MetaRefreshToken, []byte(refreshToken)); err != nil {
		return err
	}
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	return nil
}

// SignOut clears the session without signaling.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated = false
	return s.clear(ctx)
}

// Invalidate clears the session after an irrecoverable refresh failure and
// emits the auth-required signal exactly once.
func (s *Session) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	if s.invalidated {
		s.mu.Unlock()
		return nil
	}
	s.invalidated = true
	err := s.clear(ctx)
	fn := s.onAuthRequired
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
	return err
}

func (s *Session) clear(ctx context.Context) error {
	if err := s.meta.Delete(ctx, store.MetaAccessToken); err != nil {
		return err
	}
	if err := s.meta.Delete(ctx, store.MetaRefreshToken); err != nil {
		return err
	}
	s.accessToken = ""
	s.refreshToken = ""
	return nil
}

// Tokens returns the current token pair.
func (s *Session) Tokens() (accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

// DeviceID returns the stable installation identifier (set by Load).
func (s *Session) DeviceID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deviceID
}

// Authenticated reports whether a token pair is present.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken != ""
}

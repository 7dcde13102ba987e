package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

type sentNotification struct {
	purpose      auth.Purpose
	destinations []string
	params       map[string]string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (f *fakeSender) Send(_ context.Context, purpose auth.Purpose, destinations []string, params map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentNotification{purpose: purpose, destinations: destinations, params: params})
	return nil
}

func (f *fakeSender) last(t *testing.T) sentNotification {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no notification sent")
	return f.sent[len(f.sent)-1]
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testConfig() *config.Config {
	return &config.Config{
		SessionSecret:                      "session-secret",
		SessionTokenValidityDuration:       time.Hour,
		PasswordResetSecret:                "reset-secret",
		PasswordResetTokenValidityDuration: 15 * time.Minute,
		InvitationSecret:                   "invitation-secret",
		InvitationTokenValidityDuration:    72 * time.Hour,
		MasterToken:                        "master-token",
	}
}

type fixture struct {
	cfg      *config.Config
	repo     users.Repository
	sender   *fakeSender
	clock    *testClock
	codec    *auth.TokenCodec
	hasher   auth.PasswordHasher
	creds    *CredentialService
	sessions *SessionService
}

func newFixture(t *testing.T, mutate ...func(*config.Config)) *fixture {
	t.Helper()
	return newFixtureWithRepo(t, users.NewMemoryRepository(), mutate...)
}

func newFixtureWithRepo(t *testing.T, repo users.Repository, mutate ...func(*config.Config)) *fixture {
	t.Helper()

	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	clock := &testClock{t: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	codec := auth.NewTokenCodec(auth.WithClock(clock.Now))
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	sender := &fakeSender{}

	strategy, err := NewTokenSessionStrategy(hasher, codec, TokenKeysFromConfig(cfg).Session)
	require.NoError(t, err)

	return &fixture{
		cfg:      cfg,
		repo:     repo,
		sender:   sender,
		clock:    clock,
		codec:    codec,
		hasher:   hasher,
		creds:    NewCredentialService(repo, hasher, codec, sender, cfg),
		sessions: NewSessionService(strategy, repo),
	}
}

func (f *fixture) register(t *testing.T, email, password string) *models.User {
	t.Helper()
	u, err := f.creds.Register(context.Background(), email, password, "")
	require.NoError(t, err)
	return u
}

// failingRepo fails every call with err.
type failingRepo struct{ err error }

func (r failingRepo) GetByID(context.Context, string) (*models.User, error)    { return nil, r.err }
func (r failingRepo) GetByEmail(context.Context, string) (*models.User, error) { return nil, r.err }
func (r failingRepo) Save(context.Context, *models.User) (*models.User, error) { return nil, r.err }
func (r failingRepo) UpdatePassword(context.Context, string, string) error     { return r.err }

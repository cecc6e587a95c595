package login

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Deliver(ctx context.Context, identity, code string) error {
	return m.Called(ctx, identity, code).Error(0)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(email, sessionID string, issuedAt time.Time) (string, error) {
	args := m.Called(email, sessionID, issuedAt)
	return args.String(0), args.Error(1)
}

func (m *mockSigner) Expiry() time.Duration { return time.Hour }

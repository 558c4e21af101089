package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/database"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/mailer"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []*mailer.Message
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg *mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) messages() []*mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*mailer.Message(nil), m.sent...)
}

var errProvider = errors.New("provider rejected message")

func newTestStore(t *testing.T) *database.FileVisitStore {
	t.Helper()
	store, err := database.NewFileVisitStore(filepath.Join(t.TempDir(), "visits.json"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

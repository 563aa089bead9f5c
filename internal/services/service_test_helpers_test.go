package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/github"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/mail"
)

type stubSource struct {
	repos []github.Repository
	err   error
	calls int
}

func (s *stubSource) Repos(_ context.Context, _ string) ([]github.Repository, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.repos, nil
}

type stubVerifier struct {
	enabled bool
	err     error
	tokens  []string
}

func (v *stubVerifier) Provider() string { return "stub" }

func (v *stubVerifier) Enabled() bool { return v.enabled }

func (v *stubVerifier) Verify(_ context.Context, token, _ string) error {
	v.tokens = append(v.tokens, token)
	return v.err
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *recordingMailer) Sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

func repoAt(name string, stars int, updated time.Time, topics ...string) github.Repository {
	return github.Repository{
		Name:            name,
		FullName:        "octocat/" + name,
		HTMLURL:         "https://github.com/octocat/" + name,
		StargazersCount: stars,
		PushedAt:        updated.UTC().Format(time.RFC3339),
		Topics:          topics,
	}
}

type blockingMailer struct {
	release chan struct{}
	sent    atomic.Int32
}

func (m *blockingMailer) Send(ctx context.Context, _ mail.Message) error {
	select {
	case <-m.release:
		m.sent.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

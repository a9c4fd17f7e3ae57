package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kotbarbarossa/yamdb-final/internal/events"
	"github.com/kotbarbarossa/yamdb-final/internal/models"
	"github.com/kotbarbarossa/yamdb-final/internal/policy"
	"github.com/kotbarbarossa/yamdb-final/internal/repo"
	"github.com/kotbarbarossa/yamdb-final/internal/testutil"
)

var codeRe = regexp.MustCompile(`[0-9a-f]{32}`)

type sentMail struct {
	subject, body, to string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, subject, body, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{subject: subject, body: body, to: to})
	return nil
}

func (m *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	code := codeRe.FindString(m.sent[len(m.sent)-1].body)
	require.NotEmpty(t, code)
	return code
}

type published struct {
	topic, key string
	event      events.Event
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *fakePublisher) Publish(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ev, _ := event.(events.Event)
	p.events = append(p.events, published{topic: topic, key: key, event: ev})
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.event.Type)
	}
	return out
}

type env struct {
	DB       *gorm.DB
	Repo     *repo.GormRepo
	Mailer   *fakeMailer
	Events   *fakePublisher
	Auth     *AuthService
	Users    *UserService
	Catalog  *CatalogService
	Titles   *TitleService
	Reviews  *ReviewService
	Comments *CommentService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.OpenDB(t)
	r := &repo.GormRepo{DB: db}
	m := &fakeMailer{}
	p := &fakePublisher{}

	return &env{
		DB:     db,
		Repo:   r,
		Mailer: m,
		Events: p,
		Auth: &AuthService{
			Repo:   r,
			Mailer: m,
			Events: p,
			Cfg: AuthConfig{
				AccessSecret:  []byte("test-access"),
				RefreshSecret: []byte("test-refresh"),
				AccessTTL:     time.Minute,
				RefreshTTL:    time.Hour,
				CodeTTL:       time.Hour,
				NotifyTimeout: time.Second,
			},
		},
		Users:    &UserService{Repo: r, Events: p},
		Catalog:  &CatalogService{Repo: r, Events: p},
		Titles:   &TitleService{Repo: r, Events: p},
		Reviews:  &ReviewService{Repo: r, Events: p},
		Comments: &CommentService{Repo: r, Events: p},
	}
}

func actorOf(u *models.User) *policy.Actor {
	return &policy.Actor{UserID: u.ID, Username: u.Username, Role: policy.Role(u.Role), Superuser: u.IsSuperuser}
}

func (e *env) user(t *testing.T, name string, role policy.Role) *policy.Actor {
	t.Helper()
	return actorOf(testutil.SeedUser(t, e.DB, name, string(role)))
}

func (e *env) title(t *testing.T, name string) uint {
	t.Helper()
	return testutil.SeedTitle(t, e.DB, name).ID
}

func fieldsOf(t *testing.T, err error) map[string][]string {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	return ve.Fields
}

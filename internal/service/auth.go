package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/kotbarbarossa/yamdb-final/internal/events"
	"github.com/kotbarbarossa/yamdb-final/internal/models"
	"github.com/kotbarbarossa/yamdb-final/internal/notify"
	"github.com/kotbarbarossa/yamdb-final/internal/policy"
	"github.com/kotbarbarossa/yamdb-final/internal/repo"
	"github.com/kotbarbarossa/yamdb-final/internal/transport"
	"github.com/kotbarbarossa/yamdb-final/pkg/hash"
	"github.com/kotbarbarossa/yamdb-final/pkg/logging"
	"github.com/kotbarbarossa/yamdb-final/pkg/tokens"
)

const (
	codeBytes   = 16
	mailSubject = "YaMDb confirmation code"
)

type AuthConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	CodeTTL       time.Duration
	NotifyTimeout time.Duration
}

type AuthService struct {
	Repo   *repo.GormRepo
	Mailer notify.Mailer
	Events events.Publisher
	Cfg    AuthConfig
}

type TokenPair struct {
	Access     string
	Refresh    string
	AccessExp  time.Time
	RefreshExp time.Time
}

func newConfirmationCode() (string, error) {
	b := make([]byte, codeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Signup registers the identity if it is new, replaces any pending code and
// mails the new one. Repeating a signup with the same username and email
// reissues the code.
func (s *AuthService) Signup(ctx context.Context, req transport.SignupRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup", "username", req.Username)

	ve := &ValidationError{}
	validateUsername(ve, req.Username)
	validateEmail(ve, req.Email)
	if err := ve.OrNil(); err != nil {
		l.Warn("signup_failed", "status", 400, "reason", "invalid input", "error", err)
		return nil, err
	}

	user, created, err := s.resolveIdentity(ctx, req.Username, req.Email)
	if err != nil {
		if errors.Is(err, ErrDuplicateIdentity) {
			l.Warn("signup_failed", "status", 400, "reason", "duplicate identity", "error", err)
		} else {
			l.Error("signup_failed", "status", 500, "reason", "cannot store user", "error", err)
		}
		return nil, err
	}

	code, err := newConfirmationCode()
	if err != nil {
		l.Error("signup_failed", "status", 500, "reason", "cannot generate code", "error", err)
		return nil, err
	}
	codeHash, err := hash.HashSecret(code)
	if err != nil {
		l.Error("signup_failed", "status", 500, "reason", "cannot hash code", "error", err)
		return nil, err
	}
	if err := s.Repo.UpsertCode(ctx, user.ID, codeHash, time.Now().UTC().Add(s.Cfg.CodeTTL)); err != nil {
		l.Error("signup_failed", "status", 500, "reason", "cannot store code", "error", err)
		return nil, err
	}

	if err := s.dispatch(ctx, user.Email, code); err != nil {
		l.Error("signup_failed", "status", 502, "reason", "mail delivery failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	events.Emit(ctx, s.Events, s.Cfg.NotifyTimeout, events.TopicUsers, user.Username, events.New("user_signed_up", map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
		"reissued": !created,
	}))

	l.Info("signup_success", "reissued", !created)
	return user, nil
}

func (s *AuthService) resolveIdentity(ctx context.Context, username, email string) (*models.User, bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := s.Repo.FindUsersByIdentity(ctx, username, email)
		if err != nil {
			return nil, false, err
		}
		if len(existing) > 0 {
			return matchIdentity(existing, username, email)
		}

		user := &models.User{Username: username, Email: email, Role: string(policy.RoleUser)}
		err = s.Repo.CreateUser(ctx, user)
		if err == nil {
			return user, true, nil
		}
		if !errors.Is(err, repo.ErrUniqueViolation) {
			return nil, false, err
		}
	}
	return nil, false, fieldError(ErrDuplicateIdentity, "username", "a user with that username or email already exists")
}

func matchIdentity(existing []models.User, username, email string) (*models.User, bool, error) {
	ve := &ValidationError{Kind: ErrDuplicateIdentity}
	for i := range existing {
		u := &existing[i]
		sameName := u.Username == username
		sameEmail := equalFoldEmail(u.Email, email)
		if sameName && sameEmail {
			return u, false, nil
		}
		if sameName {
			ve.Add("username", "a user with that username already exists")
		}
		if sameEmail {
			ve.Add("email", "a user with that email already exists")
		}
	}
	return nil, false, ve
}

func (s *AuthService) dispatch(ctx context.Context, to, code string) error {
	if s.Mailer == nil {
		return errors.New("no mailer configured")
	}
	timeout := s.Cfg.NotifyTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body := fmt.Sprintf("Your confirmation code: %s\n\nExchange it at /api/v1/auth/token together with your username.", code)
	return s.Mailer.Send(ctx, mailSubject, body, to)
}

// Exchange trades a pending confirmation code for a token pair. The code is
// consumed on success.
func (s *AuthService) Exchange(ctx context.Context, req transport.TokenRequest) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.exchange", "username", req.Username)

	ve := &ValidationError{}
	if req.Username == "" {
		ve.Add("username", "this field is required")
	}
	if req.ConfirmationCode == "" {
		ve.Add("confirmation_code", "this field is required")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	user, err := s.Repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("exchange_failed", "status", 404, "reason", "unknown user")
		}
		return nil, notFound(err, "user")
	}

	stored, err := s.Repo.GetCode(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("exchange_failed", "status", 400, "reason", "no pending code")
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if time.Now().After(stored.ExpiresAt) {
		l.Warn("exchange_failed", "status", 400, "reason", "code expired")
		return nil, ErrInvalidToken
	}
	if !hash.CheckSecret(stored.CodeHash, req.ConfirmationCode) {
		l.Warn("exchange_failed", "status", 400, "reason", "code mismatch")
		return nil, ErrInvalidToken
	}

	consumed, err := s.Repo.ConsumeCode(ctx, stored.ID, stored.CodeHash)
	if err != nil {
		return nil, err
	}
	if !consumed {
		l.Warn("exchange_failed", "status", 400, "reason", "code already consumed")
		return nil, ErrInvalidToken
	}

	pair, err := s.mint(user)
	if err != nil {
		l.Error("exchange_failed", "status", 500, "reason", "cannot sign tokens", "error", err)
		return nil, err
	}

	events.Emit(ctx, s.Events, s.Cfg.NotifyTimeout, events.TopicUsers, user.Username, events.New("user_confirmed", map[string]any{
		"user_id": user.ID,
	}))
	l.Info("exchange_success")
	return pair, nil
}

// Refresh issues a new pair for a valid refresh token. The access token
// carries the user's current role.
func (s *AuthService) Refresh(ctx context.Context, req transport.RefreshRequest) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if req.Refresh == "" {
		return nil, fieldError(nil, "refresh", "this field is required")
	}

	claims, err := tokens.RefreshClaimsFromToken(req.Refresh, s.Cfg.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "status", 400, "reason", "invalid refresh token", "error", err)
		return nil, ErrInvalidToken
	}
	uid, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.Repo.GetUserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "status", 400, "reason", "user gone")
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return s.mint(user)
}

func (s *AuthService) mint(u *models.User) (*TokenPair, error) {
	access, accessExp, err := tokens.SignAccessToken(u.ID, u.Username, u.Role, u.IsSuperuser, s.Cfg.AccessSecret, s.Cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := tokens.SignRefreshToken(u.ID, s.Cfg.RefreshSecret, s.Cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		Access:     access,
		Refresh:    refresh,
		AccessExp:  accessExp,
		RefreshExp: refreshExp,
	}, nil
}

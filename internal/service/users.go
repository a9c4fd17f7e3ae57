package service

import (
	"context"
	"errors"

	"github.com/kotbarbarossa/yamdb-final/internal/events"
	"github.com/kotbarbarossa/yamdb-final/internal/models"
	"github.com/kotbarbarossa/yamdb-final/internal/policy"
	"github.com/kotbarbarossa/yamdb-final/internal/repo"
	"github.com/kotbarbarossa/yamdb-final/internal/transport"
	"github.com/kotbarbarossa/yamdb-final/pkg/logging"
)

type UserService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *UserService) List(ctx context.Context, actor *policy.Actor, search string, offset, limit int) (int64, []models.User, error) {
	if err := policy.Check(actor, policy.ActionRead, policy.KindUser, nil); err != nil {
		return 0, nil, err
	}
	return s.Repo.ListUsers(ctx, search, offset, limit)
}

func (s *UserService) Get(ctx context.Context, actor *policy.Actor, username string) (*models.User, error) {
	if err := policy.Check(actor, policy.ActionRead, policy.KindUser, nil); err != nil {
		return nil, err
	}
	u, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

func (s *UserService) Create(ctx context.Context, actor *policy.Actor, req transport.UserCreateRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.create")

	if err := policy.Check(actor, policy.ActionCreate, policy.KindUser, nil); err != nil {
		return nil, err
	}
	if req.Role == "" {
		req.Role = string(policy.RoleUser)
	}

	ve := &ValidationError{}
	validateUsername(ve, req.Username)
	validateEmail(ve, req.Email)
	validateRole(ve, req.Role)
	validateMaxLen(ve, "first_name", req.FirstName, maxPersonName)
	validateMaxLen(ve, "last_name", req.LastName, maxPersonName)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	if err := s.checkIdentityFree(ctx, 0, req.Username, req.Email); err != nil {
		return nil, err
	}

	u := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrUniqueViolation) {
			return nil, fieldError(ErrDuplicateIdentity, "username", "a user with that username or email already exists")
		}
		l.Error("create_user_failed", "status", 500, "error", err)
		return nil, err
	}

	events.Emit(ctx, s.Events, 0, events.TopicUsers, u.Username, events.New("user_created", map[string]any{
		"user_id": u.ID,
		"role":    u.Role,
	}))
	return u, nil
}

func (s *UserService) Update(ctx context.Context, actor *policy.Actor, username string, req transport.UserPatchRequest) (*models.User, error) {
	if err := policy.Check(actor, policy.ActionUpdate, policy.KindUser, nil); err != nil {
		return nil, err
	}
	u, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return s.apply(ctx, u, req)
}

// SetRole changes the role of a user. Admin only.
func (s *UserService) SetRole(ctx context.Context, actor *policy.Actor, username string, role policy.Role) (*models.User, error) {
	r := string(role)
	return s.Update(ctx, actor, username, transport.UserPatchRequest{Role: &r})
}

func (s *UserService) Delete(ctx context.Context, actor *policy.Actor, username string) error {
	if err := policy.Check(actor, policy.ActionDelete, policy.KindUser, nil); err != nil {
		return err
	}
	u, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		return notFound(err, "user")
	}
	if err := s.Repo.DeleteUser(ctx, u.ID); err != nil {
		return notFound(err, "user")
	}

	events.Emit(ctx, s.Events, 0, events.TopicUsers, u.Username, events.New("user_deleted", map[string]any{
		"user_id": u.ID,
	}))
	return nil
}

// Me returns the caller's own profile.
func (s *UserService) Me(ctx context.Context, actor *policy.Actor) (*models.User, error) {
	if err := policy.Check(actor, policy.ActionRead, policy.KindProfile, nil); err != nil {
		return nil, err
	}
	u, err := s.Repo.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if err := policy.Check(actor, policy.ActionRead, policy.KindProfile, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateMe edits the caller's own profile. A role in the request is ignored.
func (s *UserService) UpdateMe(ctx context.Context, actor *policy.Actor, req transport.UserPatchRequest) (*models.User, error) {
	u, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(actor, policy.ActionUpdate, policy.KindProfile, u); err != nil {
		return nil, err
	}
	req.Role = nil
	return s.apply(ctx, u, req)
}

func (s *UserService) apply(ctx context.Context, u *models.User, req transport.UserPatchRequest) (*models.User, error) {
	ve := &ValidationError{}
	fields := map[string]any{}

	if req.Username != nil && *req.Username != u.Username {
		validateUsername(ve, *req.Username)
		fields["username"] = *req.Username
	}
	if req.Email != nil && *req.Email != u.Email {
		validateEmail(ve, *req.Email)
		fields["email"] = *req.Email
	}
	if req.FirstName != nil {
		validateMaxLen(ve, "first_name", *req.FirstName, maxPersonName)
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		validateMaxLen(ve, "last_name", *req.LastName, maxPersonName)
		fields["last_name"] = *req.LastName
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.Role != nil {
		validateRole(ve, *req.Role)
		fields["role"] = *req.Role
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	newName, _ := fields["username"].(string)
	newEmail, _ := fields["email"].(string)
	if newName != "" || newEmail != "" {
		if err := s.checkIdentityFree(ctx, u.ID, newName, newEmail); err != nil {
			return nil, err
		}
	}

	if err := s.Repo.UpdateUser(ctx, u, fields); err != nil {
		if errors.Is(err, repo.ErrUniqueViolation) {
			return nil, fieldError(ErrDuplicateIdentity, "username", "a user with that username or email already exists")
		}
		return nil, notFound(err, "user")
	}
	fresh, err := s.Repo.GetUserByID(ctx, u.ID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return fresh, nil
}

// checkIdentityFree reports a duplicate if another user than self holds the
// username or email. Empty values are not checked.
func (s *UserService) checkIdentityFree(ctx context.Context, self uint, username, email string) error {
	existing, err := s.Repo.FindUsersByIdentity(ctx, username, email)
	if err != nil {
		return err
	}
	ve := &ValidationError{Kind: ErrDuplicateIdentity}
	for _, other := range existing {
		if other.ID == self {
			continue
		}
		if username != "" && other.Username == username {
			ve.Add("username", "a user with that username already exists")
		}
		if email != "" && equalFoldEmail(other.Email, email) {
			ve.Add("email", "a user with that email already exists")
		}
	}
	return ve.OrNil()
}

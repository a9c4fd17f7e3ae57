// Package policy decides whether an actor may perform an action on a kind of
// resource. It holds no state: every decision is computed from the actor's
// role claims and, for object level checks, the resource owner.
package policy

import "errors"

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("not enough rights")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

func (a Action) Safe() bool { return a == ActionRead }

type Kind int

const (
	KindCategory Kind = iota
	KindGenre
	KindTitle
	KindReview
	KindComment
	KindProfile
	KindUser
)

// Ownable is implemented by every resource that has an author.
type Ownable interface {
	OwnerID() uint
}

// Actor is the authenticated caller. A nil *Actor is anonymous.
type Actor struct {
	UserID    uint
	Username  string
	Role      Role
	Superuser bool
}

func (a *Actor) Authenticated() bool {
	return a != nil && a.UserID != 0
}

// EffectiveRole treats superusers as admins.
func (a *Actor) EffectiveRole() Role {
	if !a.Authenticated() {
		return ""
	}
	if a.Superuser {
		return RoleAdmin
	}
	return a.Role
}

func (a *Actor) IsAdmin() bool { return a.EffectiveRole() == RoleAdmin }

func (a *Actor) IsModerator() bool { return a.EffectiveRole() == RoleModerator }

func (a *Actor) owns(res Ownable) bool {
	return a.Authenticated() && res != nil && res.OwnerID() == a.UserID
}

type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) Err() error {
	switch d {
	case DenyUnauthenticated:
		return ErrUnauthenticated
	case DenyForbidden:
		return ErrForbidden
	}
	return nil
}

// Authorize evaluates one request. res is nil for collection level checks
// (listing, creating) and for kinds that have no owner.
func Authorize(actor *Actor, action Action, kind Kind, res Ownable) Decision {
	switch kind {
	case KindProfile:
		if !actor.Authenticated() {
			return DenyUnauthenticated
		}
		if res != nil && !actor.owns(res) {
			return DenyForbidden
		}
		return Allow

	case KindUser:
		if !actor.Authenticated() {
			return DenyUnauthenticated
		}
		if !actor.IsAdmin() {
			return DenyForbidden
		}
		return Allow
	}

	if action.Safe() {
		return Allow
	}
	if !actor.Authenticated() {
		return DenyUnauthenticated
	}

	switch kind {
	case KindCategory, KindGenre, KindTitle:
		if actor.IsAdmin() {
			return Allow
		}
		return DenyForbidden

	case KindReview, KindComment:
		if action == ActionCreate || res == nil {
			return Allow
		}
		if actor.IsAdmin() || actor.IsModerator() || actor.owns(res) {
			return Allow
		}
		return DenyForbidden
	}

	return DenyForbidden
}

// Check is Authorize returning ErrUnauthenticated or ErrForbidden on deny.
func Check(actor *Actor, action Action, kind Kind, res Ownable) error {
	return Authorize(actor, action, kind, res).Err()
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kotbarbarossa/yamdb-final/internal/policy"
	"github.com/kotbarbarossa/yamdb-final/internal/repo"
)

func notFound(err error, what string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

// requireAccount reloads the token's user. Tokens outlive deleted accounts,
// so a vanished user is treated as unauthenticated.
func requireAccount(ctx context.Context, r *repo.GormRepo, actor *policy.Actor) error {
	if _, err := r.GetUserByID(ctx, actor.UserID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("%w: account no longer exists", ErrUnauthenticated)
		}
		return err
	}
	return nil
}

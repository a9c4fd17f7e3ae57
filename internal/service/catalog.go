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

// CatalogService manages categories and genres.
type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func validateSlugged(req transport.SluggedRequest) error {
	ve := &ValidationError{}
	validateName(ve, req.Name)
	validateSlug(ve, req.Slug)
	return ve.OrNil()
}

func duplicateSlug(err error) error {
	if errors.Is(err, repo.ErrUniqueViolation) {
		return fieldError(nil, "slug", "an object with this slug already exists")
	}
	return err
}

func (s *CatalogService) ListCategories(ctx context.Context, search string, offset, limit int) (int64, []models.Category, error) {
	return s.Repo.ListCategories(ctx, search, offset, limit)
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor *policy.Actor, req transport.SluggedRequest) (*models.Category, error) {
	if err := policy.Check(actor, policy.ActionCreate, policy.KindCategory, nil); err != nil {
		return nil, err
	}
	if err := validateSlugged(req); err != nil {
		return nil, err
	}

	c := &models.Category{Name: req.Name, Slug: req.Slug}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		return nil, duplicateSlug(err)
	}

	s.emit(ctx, "category_created", c.Slug)
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, actor *policy.Actor, slug string) error {
	if err := policy.Check(actor, policy.ActionDelete, policy.KindCategory, nil); err != nil {
		return err
	}
	if err := s.Repo.DeleteCategory(ctx, slug); err != nil {
		return notFound(err, "category")
	}

	s.emit(ctx, "category_deleted", slug)
	return nil
}

func (s *CatalogService) ListGenres(ctx context.Context, search string, offset, limit int) (int64, []models.Genre, error) {
	return s.Repo.ListGenres(ctx, search, offset, limit)
}

func (s *CatalogService) CreateGenre(ctx context.Context, actor *policy.Actor, req transport.SluggedRequest) (*models.Genre, error) {
	if err := policy.Check(actor, policy.ActionCreate, policy.KindGenre, nil); err != nil {
		return nil, err
	}
	if err := validateSlugged(req); err != nil {
		return nil, err
	}

	g := &models.Genre{Name: req.Name, Slug: req.Slug}
	if err := s.Repo.CreateGenre(ctx, g); err != nil {
		return nil, duplicateSlug(err)
	}

	s.emit(ctx, "genre_created", g.Slug)
	return g, nil
}

func (s *CatalogService) DeleteGenre(ctx context.Context, actor *policy.Actor, slug string) error {
	if err := policy.Check(actor, policy.ActionDelete, policy.KindGenre, nil); err != nil {
		return err
	}
	if err := s.Repo.DeleteGenre(ctx, slug); err != nil {
		return notFound(err, "genre")
	}

	s.emit(ctx, "genre_deleted", slug)
	return nil
}

func (s *CatalogService) emit(ctx context.Context, typ, slug string) {
	logging.FromContext(ctx).Info(typ, "slug", slug)
	events.Emit(ctx, s.Events, 0, events.TopicCatalog, slug, events.New(typ, map[string]any{"slug": slug}))
}

package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/kotbarbarossa/yamdb-final/internal/events"
	"github.com/kotbarbarossa/yamdb-final/internal/models"
	"github.com/kotbarbarossa/yamdb-final/internal/policy"
	"github.com/kotbarbarossa/yamdb-final/internal/repo"
	"github.com/kotbarbarossa/yamdb-final/internal/transport"
)

type TitleService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *TitleService) List(ctx context.Context, f repo.TitleFilter, offset, limit int) (int64, []models.Title, error) {
	return s.Repo.ListTitles(ctx, f, offset, limit)
}

func (s *TitleService) Get(ctx context.Context, id uint) (*models.Title, error) {
	t, err := s.Repo.GetTitle(ctx, id)
	if err != nil {
		return nil, notFound(err, "title")
	}
	return t, nil
}

func (s *TitleService) Create(ctx context.Context, actor *policy.Actor, req transport.TitleCreateRequest) (*models.Title, error) {
	if err := policy.Check(actor, policy.ActionCreate, policy.KindTitle, nil); err != nil {
		return nil, err
	}

	ve := &ValidationError{}
	validateName(ve, req.Name)
	validateYear(ve, req.Year)

	t := &models.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
	}
	if req.Category != nil && *req.Category != "" {
		if cat := s.resolveCategory(ctx, ve, *req.Category); cat != nil {
			t.CategoryID = &cat.ID
		}
	}
	t.Genres = s.resolveGenres(ctx, ve, req.Genre)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	if err := s.Repo.CreateTitle(ctx, t); err != nil {
		return nil, err
	}

	s.emit(ctx, "title_created", t.ID)
	return s.Get(ctx, t.ID)
}

// Update applies a partial change. An empty category detaches the title; a
// present genre list replaces the current one.
func (s *TitleService) Update(ctx context.Context, actor *policy.Actor, id uint, req transport.TitlePatchRequest) (*models.Title, error) {
	if err := policy.Check(actor, policy.ActionUpdate, policy.KindTitle, nil); err != nil {
		return nil, err
	}
	if err := s.Repo.TitleExists(ctx, id); err != nil {
		return nil, notFound(err, "title")
	}

	ve := &ValidationError{}
	fields := map[string]any{}

	if req.Name != nil {
		validateName(ve, *req.Name)
		fields["name"] = *req.Name
	}
	if req.Year != nil {
		validateYear(ve, req.Year)
		fields["year"] = *req.Year
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Category != nil {
		if *req.Category == "" {
			fields["category_id"] = nil
		} else if cat := s.resolveCategory(ctx, ve, *req.Category); cat != nil {
			fields["category_id"] = cat.ID
		}
	}
	var genres []models.Genre
	if req.Genre != nil {
		genres = s.resolveGenres(ctx, ve, *req.Genre)
		if genres == nil {
			genres = []models.Genre{}
		}
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	if err := s.Repo.UpdateTitle(ctx, id, fields, genres); err != nil {
		return nil, notFound(err, "title")
	}

	s.emit(ctx, "title_updated", id)
	return s.Get(ctx, id)
}

func (s *TitleService) Delete(ctx context.Context, actor *policy.Actor, id uint) error {
	if err := policy.Check(actor, policy.ActionDelete, policy.KindTitle, nil); err != nil {
		return err
	}
	if err := s.Repo.DeleteTitle(ctx, id); err != nil {
		return notFound(err, "title")
	}

	s.emit(ctx, "title_deleted", id)
	return nil
}

func (s *TitleService) resolveCategory(ctx context.Context, ve *ValidationError, slug string) *models.Category {
	cat, err := s.Repo.GetCategory(ctx, slug)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			ve.Add("category", "category with slug "+strconv.Quote(slug)+" does not exist")
		} else {
			ve.Add("category", "cannot resolve category")
		}
		return nil
	}
	return cat
}

func (s *TitleService) resolveGenres(ctx context.Context, ve *ValidationError, slugs []string) []models.Genre {
	if len(slugs) == 0 {
		return nil
	}
	genres, err := s.Repo.GetGenres(ctx, slugs)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			ve.Add("genre", "one or more genres do not exist")
		} else {
			ve.Add("genre", "cannot resolve genres")
		}
		return nil
	}
	return genres
}

func (s *TitleService) emit(ctx context.Context, typ string, id uint) {
	key := strconv.FormatUint(uint64(id), 10)
	events.Emit(ctx, s.Events, 0, events.TopicCatalog, key, events.New(typ, map[string]any{"title_id": id}))
}

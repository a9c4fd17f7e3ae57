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
	"github.com/kotbarbarossa/yamdb-final/pkg/logging"
)

// ReviewService enforces one review per author and title and computes title
// ratings from the stored scores.
type ReviewService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func duplicateReview() error {
	return fieldError(ErrDuplicateReview, "non_field_errors", "you have already reviewed this title")
}

func (s *ReviewService) List(ctx context.Context, titleID uint, offset, limit int) (int64, []models.Review, error) {
	if err := s.Repo.TitleExists(ctx, titleID); err != nil {
		return 0, nil, notFound(err, "title")
	}
	return s.Repo.ListReviews(ctx, titleID, offset, limit)
}

func (s *ReviewService) Get(ctx context.Context, titleID, reviewID uint) (*models.Review, error) {
	rv, err := s.Repo.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, notFound(err, "review")
	}
	return rv, nil
}

func (s *ReviewService) Submit(ctx context.Context, actor *policy.Actor, titleID uint, req transport.ReviewCreateRequest) (*models.Review, error) {
	l := logging.FromContext(ctx).With("svc", "reviews.submit", "title_id", titleID)

	if err := policy.Check(actor, policy.ActionCreate, policy.KindReview, nil); err != nil {
		return nil, err
	}
	if err := requireAccount(ctx, s.Repo, actor); err != nil {
		l.Warn("submit_review_failed", "status", 401, "reason", "unknown account", "error", err)
		return nil, err
	}
	if err := s.Repo.TitleExists(ctx, titleID); err != nil {
		return nil, notFound(err, "title")
	}
	if err := checkScore(req.Score); err != nil {
		return nil, err
	}
	ve := &ValidationError{}
	validateText(ve, req.Text)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	exists, err := s.Repo.HasReview(ctx, titleID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		l.Warn("submit_review_failed", "status", 400, "reason", "duplicate review")
		return nil, duplicateReview()
	}

	rv := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.UserID,
		Text:     req.Text,
		Score:    req.Score,
	}
	if err := s.Repo.CreateReview(ctx, rv); err != nil {
		if errors.Is(err, repo.ErrUniqueViolation) {
			l.Warn("submit_review_failed", "status", 400, "reason", "duplicate review, lost race")
			return nil, duplicateReview()
		}
		return nil, err
	}

	s.emit(ctx, "review_created", rv)
	return rv, nil
}

func (s *ReviewService) Update(ctx context.Context, actor *policy.Actor, titleID, reviewID uint, req transport.ReviewPatchRequest) (*models.Review, error) {
	if err := policy.Check(actor, policy.ActionUpdate, policy.KindReview, nil); err != nil {
		return nil, err
	}
	rv, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(actor, policy.ActionUpdate, policy.KindReview, rv); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Score != nil {
		if err := checkScore(*req.Score); err != nil {
			return nil, err
		}
		fields["score"] = *req.Score
	}
	if req.Text != nil {
		ve := &ValidationError{}
		validateText(ve, *req.Text)
		if err := ve.OrNil(); err != nil {
			return nil, err
		}
		fields["text"] = *req.Text
	}

	if err := s.Repo.UpdateReview(ctx, rv, fields); err != nil {
		return nil, notFound(err, "review")
	}
	updated, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, "review_updated", updated)
	return updated, nil
}

func (s *ReviewService) Delete(ctx context.Context, actor *policy.Actor, titleID, reviewID uint) error {
	if err := policy.Check(actor, policy.ActionDelete, policy.KindReview, nil); err != nil {
		return err
	}
	rv, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := policy.Check(actor, policy.ActionDelete, policy.KindReview, rv); err != nil {
		return err
	}
	if err := s.Repo.DeleteReview(ctx, titleID, reviewID); err != nil {
		return notFound(err, "review")
	}

	s.emit(ctx, "review_deleted", rv)
	return nil
}

// ComputeRating returns the mean score of the title's reviews, or nil when
// the title has none. It is read from storage on every call.
func (s *ReviewService) ComputeRating(ctx context.Context, titleID uint) (*float64, error) {
	if err := s.Repo.TitleExists(ctx, titleID); err != nil {
		return nil, notFound(err, "title")
	}
	return s.Repo.AverageScore(ctx, titleID)
}

func (s *ReviewService) emit(ctx context.Context, typ string, rv *models.Review) {
	key := strconv.FormatUint(uint64(rv.TitleID), 10)
	events.Emit(ctx, s.Events, 0, events.TopicReviews, key, events.New(typ, map[string]any{
		"review_id": rv.ID,
		"title_id":  rv.TitleID,
		"author_id": rv.AuthorID,
		"score":     rv.Score,
	}))
}

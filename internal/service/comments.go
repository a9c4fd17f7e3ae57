package service

import (
	"context"
	"strconv"

	"github.com/kotbarbarossa/yamdb-final/internal/events"
	"github.com/kotbarbarossa/yamdb-final/internal/models"
	"github.com/kotbarbarossa/yamdb-final/internal/policy"
	"github.com/kotbarbarossa/yamdb-final/internal/repo"
	"github.com/kotbarbarossa/yamdb-final/internal/transport"
)

// CommentService scopes every operation to a review of a title. A review
// that does not belong to the title is reported as not found.
type CommentService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *CommentService) review(ctx context.Context, titleID, reviewID uint) (*models.Review, error) {
	rv, err := s.Repo.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, notFound(err, "review")
	}
	return rv, nil
}

func (s *CommentService) List(ctx context.Context, titleID, reviewID uint, offset, limit int) (int64, []models.Comment, error) {
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return 0, nil, err
	}
	return s.Repo.ListComments(ctx, reviewID, offset, limit)
}

func (s *CommentService) Get(ctx context.Context, titleID, reviewID, commentID uint) (*models.Comment, error) {
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	c, err := s.Repo.GetComment(ctx, reviewID, commentID)
	if err != nil {
		return nil, notFound(err, "comment")
	}
	return c, nil
}

func (s *CommentService) Create(ctx context.Context, actor *policy.Actor, titleID, reviewID uint, req transport.CommentRequest) (*models.Comment, error) {
	if err := policy.Check(actor, policy.ActionCreate, policy.KindComment, nil); err != nil {
		return nil, err
	}
	if err := requireAccount(ctx, s.Repo, actor); err != nil {
		return nil, err
	}
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	ve := &ValidationError{}
	validateText(ve, req.Text)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	c := &models.Comment{ReviewID: reviewID, AuthorID: actor.UserID, Text: req.Text}
	if err := s.Repo.CreateComment(ctx, c); err != nil {
		return nil, err
	}

	s.emit(ctx, "comment_created", titleID, c)
	return c, nil
}

func (s *CommentService) Update(ctx context.Context, actor *policy.Actor, titleID, reviewID, commentID uint, req transport.CommentRequest) (*models.Comment, error) {
	if err := policy.Check(actor, policy.ActionUpdate, policy.KindComment, nil); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(actor, policy.ActionUpdate, policy.KindComment, c); err != nil {
		return nil, err
	}
	ve := &ValidationError{}
	validateText(ve, req.Text)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	if err := s.Repo.UpdateCommentText(ctx, c.ID, req.Text); err != nil {
		return nil, notFound(err, "comment")
	}
	return s.Get(ctx, titleID, reviewID, commentID)
}

func (s *CommentService) Delete(ctx context.Context, actor *policy.Actor, titleID, reviewID, commentID uint) error {
	if err := policy.Check(actor, policy.ActionDelete, policy.KindComment, nil); err != nil {
		return err
	}
	c, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := policy.Check(actor, policy.ActionDelete, policy.KindComment, c); err != nil {
		return err
	}
	if err := s.Repo.DeleteComment(ctx, reviewID, commentID); err != nil {
		return notFound(err, "comment")
	}

	s.emit(ctx, "comment_deleted", titleID, c)
	return nil
}

func (s *CommentService) emit(ctx context.Context, typ string, titleID uint, c *models.Comment) {
	key := strconv.FormatUint(uint64(titleID), 10)
	events.Emit(ctx, s.Events, 0, events.TopicReviews, key, events.New(typ, map[string]any{
		"comment_id": c.ID,
		"review_id":  c.ReviewID,
		"author_id":  c.AuthorID,
	}))
}

package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/kotbarbarossa/yamdb-final/internal/models"
)

func (r *GormRepo) CreateComment(ctx context.Context, c *models.Comment) error {
	if err := r.DB.WithContext(ctx).Omit("Author").Create(c).Error; err != nil {
		return translate(err)
	}
	return r.DB.WithContext(ctx).Preload("Author").First(c, c.ID).Error
}

func (r *GormRepo) GetComment(ctx context.Context, reviewID, commentID uint) (*models.Comment, error) {
	var c models.Comment
	err := r.DB.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND review_id = ?", commentID, reviewID).
		First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *GormRepo) ListComments(ctx context.Context, reviewID uint, offset, limit int) (int64, []models.Comment, error) {
	q := r.DB.WithContext(ctx).Model(&models.Comment{}).Where("review_id = ?", reviewID)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, translate(err)
	}

	items := make([]models.Comment, 0, limit)
	if err := q.Preload("Author").Order("pub_date DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, translate(err)
	}
	return total, items, nil
}

func (r *GormRepo) UpdateCommentText(ctx context.Context, commentID uint, text string) error {
	res := r.DB.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", commentID).Update("text", text)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteComment(ctx context.Context, reviewID, commentID uint) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND review_id = ?", commentID, reviewID).Delete(&models.Comment{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

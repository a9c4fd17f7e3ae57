package repo

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/kotbarbarossa/yamdb-final/internal/models"
)

func (r *GormRepo) CreateReview(ctx context.Context, rv *models.Review) error {
	if err := r.DB.WithContext(ctx).Omit("Author").Create(rv).Error; err != nil {
		return translate(err)
	}
	return r.DB.WithContext(ctx).Preload("Author").First(rv, rv.ID).Error
}

func (r *GormRepo) GetReview(ctx context.Context, titleID, reviewID uint) (*models.Review, error) {
	var rv models.Review
	err := r.DB.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND title_id = ?", reviewID, titleID).
		First(&rv).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rv, nil
}

func (r *GormRepo) ListReviews(ctx context.Context, titleID uint, offset, limit int) (int64, []models.Review, error) {
	q := r.DB.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, translate(err)
	}

	items := make([]models.Review, 0, limit)
	if err := q.Preload("Author").Order("pub_date DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, translate(err)
	}
	return total, items, nil
}

func (r *GormRepo) UpdateReview(ctx context.Context, rv *models.Review, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.DB.WithContext(ctx).Model(&models.Review{}).Where("id = ?", rv.ID).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReview removes the review and its comments.
func (r *GormRepo) DeleteReview(ctx context.Context, titleID, reviewID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND title_id = ?", reviewID, titleID).Delete(&models.Review{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("review_id = ?", reviewID).Delete(&models.Comment{}).Error
	})
}

// AverageScore returns the mean score of the title, or nil when it has no
// reviews.
func (r *GormRepo) AverageScore(ctx context.Context, titleID uint) (*float64, error) {
	var avg sql.NullFloat64
	err := r.DB.WithContext(ctx).
		Model(&models.Review{}).
		Select("CAST(AVG(score) AS DOUBLE PRECISION)").
		Where("title_id = ?", titleID).
		Row().
		Scan(&avg)
	if err != nil {
		return nil, translate(err)
	}
	if !avg.Valid {
		return nil, nil
	}
	v := avg.Float64
	return &v, nil
}

func (r *GormRepo) HasReview(ctx context.Context, titleID, authorID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.Review{}).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Count(&n).Error
	if err != nil {
		return false, translate(err)
	}
	return n > 0, nil
}

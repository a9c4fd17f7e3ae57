package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/kotbarbarossa/yamdb-final/internal/models"
)

const ratingColumn = `(SELECT CAST(AVG(reviews.score) AS DOUBLE PRECISION) FROM reviews WHERE reviews.title_id = titles.id) AS rating`

type TitleFilter struct {
	Genre    string
	Category string
	Name     string
	Year     *int
}

func (f TitleFilter) scope(db *gorm.DB) *gorm.DB {
	if f.Genre != "" {
		db = db.Where("titles.id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Table("title_genres").
				Select("title_genres.title_id").
				Joins("JOIN genres ON genres.id = title_genres.genre_id").
				Where("genres.slug = ?", f.Genre))
	}
	if f.Category != "" {
		db = db.Where("titles.category_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&models.Category{}).
				Select("id").
				Where("slug = ?", f.Category))
	}
	if f.Name != "" {
		db = db.Where("LOWER(titles.name) LIKE ? ESCAPE '\\'", likePattern(f.Name))
	}
	if f.Year != nil {
		db = db.Where("titles.year = ?", *f.Year)
	}
	return db
}

func withRating(db *gorm.DB) *gorm.DB {
	return db.Select("titles.*, " + ratingColumn).Preload("Category").Preload("Genres", func(db *gorm.DB) *gorm.DB {
		return db.Order("genres.id ASC")
	})
}

func (r *GormRepo) ListTitles(ctx context.Context, f TitleFilter, offset, limit int) (int64, []models.Title, error) {
	q := r.DB.WithContext(ctx).Model(&models.Title{}).Scopes(f.scope)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, translate(err)
	}

	items := make([]models.Title, 0, limit)
	if err := q.Scopes(withRating).Order("titles.name ASC").Order("titles.id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, translate(err)
	}
	return total, items, nil
}

// GetTitle loads a title with its category, genres and current rating.
func (r *GormRepo) GetTitle(ctx context.Context, id uint) (*models.Title, error) {
	var title models.Title
	if err := r.DB.WithContext(ctx).Scopes(withRating).Where("titles.id = ?", id).First(&title).Error; err != nil {
		return nil, translate(err)
	}
	return &title, nil
}

func (r *GormRepo) TitleExists(ctx context.Context, id uint) error {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return translate(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func linkGenres(tx *gorm.DB, titleID uint, genres []models.Genre) error {
	if len(genres) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(genres))
	for _, g := range genres {
		rows = append(rows, map[string]any{"title_id": titleID, "genre_id": g.ID})
	}
	return tx.Table("title_genres").Create(&rows).Error
}

func (r *GormRepo) CreateTitle(ctx context.Context, t *models.Title) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Category", "Genres").Create(t).Error; err != nil {
			return translate(err)
		}
		return linkGenres(tx, t.ID, t.Genres)
	})
}

// UpdateTitle writes the given columns and, when genres is non-nil, replaces
// the genre links.
func (r *GormRepo) UpdateTitle(ctx context.Context, id uint, fields map[string]any, genres []models.Genre) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Title{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		if len(fields) > 0 {
			if err := tx.Model(&models.Title{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return translate(err)
			}
		}
		if genres != nil {
			if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", id).Error; err != nil {
				return err
			}
			return linkGenres(tx, id, genres)
		}
		return nil
	})
}

// DeleteTitle removes the title with its genre links, reviews and their
// comments.
func (r *GormRepo) DeleteTitle(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviews := tx.Model(&models.Review{}).Select("id").Where("title_id = ?", id)
		if err := tx.Where("review_id IN (?)", reviews).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Title{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/kotbarbarossa/yamdb-final/internal/models"
)

func listSlugged[T models.Category | models.Genre](ctx context.Context, db *gorm.DB, search string, offset, limit int) (int64, []T, error) {
	q := db.WithContext(ctx).Model(new(T))
	if search != "" {
		pattern := likePattern(search)
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(slug) LIKE ? ESCAPE '\\'", pattern, pattern)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, translate(err)
	}

	items := make([]T, 0, limit)
	if err := q.Order("name ASC").Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, translate(err)
	}
	return total, items, nil
}

func getBySlug[T models.Category | models.Genre](ctx context.Context, db *gorm.DB, slug string) (*T, error) {
	item := new(T)
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(item).Error; err != nil {
		return nil, translate(err)
	}
	return item, nil
}

func (r *GormRepo) ListCategories(ctx context.Context, search string, offset, limit int) (int64, []models.Category, error) {
	return listSlugged[models.Category](ctx, r.DB, search, offset, limit)
}

func (r *GormRepo) GetCategory(ctx context.Context, slug string) (*models.Category, error) {
	return getBySlug[models.Category](ctx, r.DB, slug)
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return translate(r.DB.WithContext(ctx).Create(c).Error)
}

// DeleteCategory detaches the category from its titles before removing it.
func (r *GormRepo) DeleteCategory(ctx context.Context, slug string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cat models.Category
		if err := tx.Where("slug = ?", slug).First(&cat).Error; err != nil {
			return translate(err)
		}
		if err := tx.Model(&models.Title{}).Where("category_id = ?", cat.ID).Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&cat).Error
	})
}

func (r *GormRepo) ListGenres(ctx context.Context, search string, offset, limit int) (int64, []models.Genre, error) {
	return listSlugged[models.Genre](ctx, r.DB, search, offset, limit)
}

func (r *GormRepo) GetGenre(ctx context.Context, slug string) (*models.Genre, error) {
	return getBySlug[models.Genre](ctx, r.DB, slug)
}

// GetGenres resolves every slug or fails with ErrNotFound.
func (r *GormRepo) GetGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	var genres []models.Genre
	if err := r.DB.WithContext(ctx).Where("slug IN ?", slugs).Order("id ASC").Find(&genres).Error; err != nil {
		return nil, translate(err)
	}
	seen := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		seen[s] = struct{}{}
	}
	if len(genres) != len(seen) {
		return nil, ErrNotFound
	}
	return genres, nil
}

func (r *GormRepo) CreateGenre(ctx context.Context, g *models.Genre) error {
	return translate(r.DB.WithContext(ctx).Create(g).Error)
}

func (r *GormRepo) DeleteGenre(ctx context.Context, slug string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var genre models.Genre
		if err := tx.Where("slug = ?", slug).First(&genre).Error; err != nil {
			return translate(err)
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE genre_id = ?", genre.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&genre).Error
	})
}

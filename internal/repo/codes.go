package repo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/kotbarbarossa/yamdb-final/internal/models"
)

// UpsertCode stores a new code hash for the user, replacing any pending one.
func (r *GormRepo) UpsertCode(ctx context.Context, userID uint, codeHash string, expiresAt time.Time) error {
	code := models.ConfirmationCode{
		UserID:    userID,
		CodeHash:  codeHash,
		ExpiresAt: expiresAt,
	}
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code_hash", "expires_at", "created_at"}),
	}).Create(&code).Error
	return translate(err)
}

func (r *GormRepo) GetCode(ctx context.Context, userID uint) (*models.ConfirmationCode, error) {
	var code models.ConfirmationCode
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&code).Error; err != nil {
		return nil, translate(err)
	}
	return &code, nil
}

// ConsumeCode deletes the code only if it still holds the hash the caller
// verified. False means another exchange or a reissue got there first.
func (r *GormRepo) ConsumeCode(ctx context.Context, id uint, codeHash string) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND code_hash = ?", id, codeHash).
		Delete(&models.ConfirmationCode{})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

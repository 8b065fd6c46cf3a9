package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/shivgems/internal/models"
)

func (r *GormRepo) RevokeToken(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) error {
	tok := models.RevokedToken{JTI: jti, UserID: userID, ExpiresAt: expiresAt}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&tok).Error
}

func (r *GormRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PurgeExpiredTokens drops revocations for tokens that can no longer verify anyway.
func (r *GormRepo) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.RevokedToken{})
	return res.RowsAffected, res.Error
}

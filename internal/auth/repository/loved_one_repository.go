package repository

import (
	authdomain "sentry-backend/internal/auth/domain"

	"gorm.io/gorm"
)

// LovedOneRepository provides read access to emergency contact relationships
type LovedOneRepository interface {
	AlertableForUser(userID string) ([]authdomain.LovedOne, error)
}

type lovedOneRepository struct {
	db *gorm.DB
}

// NewLovedOneRepository creates a new instance of lovedOneRepository
func NewLovedOneRepository(db *gorm.DB) LovedOneRepository {
	return &lovedOneRepository{
		db: db,
	}
}

// AlertableForUser returns the contacts of a device owner that should
// receive crash notifications (relationship active, contact opted in)
func (r *lovedOneRepository) AlertableForUser(userID string) ([]authdomain.LovedOne, error) {
	var lovedOnes []authdomain.LovedOne
	err := r.db.Where("user_id = ? AND is_active = ? AND is_alerted = ?", userID, true, true).
		Find(&lovedOnes).Error
	if err != nil {
		return nil, err
	}
	return lovedOnes, nil
}

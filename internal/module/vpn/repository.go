package vpn

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence for VPN access records.
type Repository interface {
	Create(ctx context.Context, access *Access) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Access, error)
	GetByToken(ctx context.Context, token string) (*Access, error)
	Update(ctx context.Context, access *Access) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a GORM-backed VPN access repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, access *Access) error {
	if err := r.db.WithContext(ctx).Create(access).Error; err != nil {
		return fmt.Errorf("create vpn access: %w", err)
	}
	return nil
}

func (r *gormRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Access, error) {
	var access Access
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&access).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccessNotFound
		}
		return nil, fmt.Errorf("get vpn access: %w", err)
	}
	return &access, nil
}

func (r *gormRepository) GetByToken(ctx context.Context, token string) (*Access, error) {
	var access Access
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&access).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccessNotFound
		}
		return nil, fmt.Errorf("get vpn access by token: %w", err)
	}
	return &access, nil
}

func (r *gormRepository) Update(ctx context.Context, access *Access) error {
	if err := r.db.WithContext(ctx).Save(access).Error; err != nil {
		return fmt.Errorf("update vpn access: %w", err)
	}
	return nil
}

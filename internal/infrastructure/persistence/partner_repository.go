package persistence

import (
	"context"
	"errors"

	"github.com/erp/storesync/internal/domain/partner"
	"github.com/erp/storesync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, partner.ErrClientNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail returns the oldest client with the given address
func (r *GormClientRepository) FindByEmail(ctx context.Context, email string) (*partner.Client, error) {
	email = partner.NormalizeEmail(email)
	if email == "" {
		return nil, partner.ErrClientNotFound
	}
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, partner.ErrClientNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *partner.Client) error {
	model := &models.ClientModel{}
	model.FromDomain(client)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormClientRepository implements ClientRepository
var _ partner.ClientRepository = (*GormClientRepository)(nil)

package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository defines decoupled operations for session persistence.
type SessionRepository interface {
	Get(ctx context.Context) (*Session, error)
	Upsert(ctx context.Context, s *Session) error
	UpsertCredentials(ctx context.Context, accessToken, refreshToken string) error
	Delete(ctx context.Context) error
}

// ProductRepository defines decoupled operations for the product cache.
type ProductRepository interface {
	Put(ctx context.Context, p Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	SearchByName(ctx context.Context, nameSubstr string) ([]Product, error)
	Clear(ctx context.Context) error
	ReplaceAll(ctx context.Context, products []Product) error
}

// gormSessionRepo is a GORM-backed implementation of SessionRepository.
// Use constructor NewSessionRepository to obtain an instance.
type gormSessionRepo struct{ db *gorm.DB }

// gormProductRepo is a GORM-backed implementation of ProductRepository.
// Use constructor NewProductRepository to obtain an instance.
type gormProductRepo struct{ db *gorm.DB }

// NewSessionRepository creates a SessionRepository. Accepts *gorm.DB to avoid global access.
func NewSessionRepository(db *gorm.DB) SessionRepository { return &gormSessionRepo{db: db} }

// NewProductRepository creates a ProductRepository. Accepts *gorm.DB to avoid global access.
func NewProductRepository(db *gorm.DB) ProductRepository { return &gormProductRepo{db: db} }

func (r *gormSessionRepo) Get(ctx context.Context) (*Session, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var s Session
	err := r.db.WithContext(ctx).First(&s, "id = ?", sessionRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *gormSessionRepo) Upsert(ctx context.Context, s *Session) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	s.ID = sessionRowID
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "user_profile", "updated_at"}),
	}).Create(s).Error
}

// UpsertCredentials replaces the token pair and leaves the cached user untouched.
func (r *gormSessionRepo) UpsertCredentials(ctx context.Context, accessToken, refreshToken string) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	s := &Session{ID: sessionRowID, AccessToken: accessToken, RefreshToken: refreshToken}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "updated_at"}),
	}).Create(s).Error
}

func (r *gormSessionRepo) Delete(ctx context.Context) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&Session{}).Error
}

func (r *gormProductRepo) Put(ctx context.Context, p Product) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&p).Error
}

func (r *gormProductRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var p Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormProductRepo) List(ctx context.Context) ([]Product, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var products []Product
	if err := r.db.WithContext(ctx).Order("name").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *gormProductRepo) SearchByName(ctx context.Context, nameSubstr string) ([]Product, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var products []Product
	if err := r.db.WithContext(ctx).Where("name LIKE ?", "%"+nameSubstr+"%").Order("name").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *gormProductRepo) Clear(ctx context.Context) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&Product{}).Error
}

// ReplaceAll swaps the whole cache for products in one transaction. On any
// error the previous contents are kept.
func (r *gormProductRepo) ReplaceAll(ctx context.Context, products []Product) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(&Product{}).Error; err != nil {
			return err
		}
		for i := range products {
			if products[i].ID == "" {
				return fmt.Errorf("product %q has no id", products[i].Name)
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&products[i]).Error; err != nil {
				return fmt.Errorf("failed to cache product %s: %w", products[i].ID, err)
			}
		}
		return nil
	})
}

package catalog

import (
	"context"
	"errors"
	"strings"

	"studiofinder/internal/discovery"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudioFilters struct {
	Location string
	Limit    int
	Offset   int
}

// Repository is the database-backed catalog. It satisfies discovery.Catalog.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Studio{}, &Equipment{})
}

// GetAll returns studios in catalog order with an optional location filter.
// A zero Limit returns every match.
func (r *Repository) GetAll(ctx context.Context, f StudioFilters) ([]Studio, int64, error) {
	var studios []Studio
	var total int64

	q := r.db.WithContext(ctx).Model(&Studio{})

	if loc := strings.TrimSpace(f.Location); loc != "" {
		q = q.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(loc)+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Preload("Equipment", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Order("position ASC").Order("id ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	err := q.Find(&studios).Error
	return studios, total, err
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Studio, error) {
	var studio Studio
	err := r.db.WithContext(ctx).
		Preload("Equipment", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("id = ?", id).
		First(&studio).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStudioNotFound
	}
	if err != nil {
		return nil, err
	}
	return &studio, nil
}

// Upsert writes the studio and replaces its equipment list.
func (r *Repository) Upsert(ctx context.Context, s *Studio) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("studio_id = ?", s.ID).Delete(&Equipment{}).Error; err != nil {
			return err
		}
		equipment := s.Equipment
		s.Equipment = nil
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(s).Error; err != nil {
			return err
		}
		for i := range equipment {
			equipment[i].ID = 0
			equipment[i].StudioID = s.ID
		}
		if len(equipment) > 0 {
			if err := tx.Create(&equipment).Error; err != nil {
				return err
			}
		}
		s.Equipment = equipment
		return nil
	})
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Studio{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStudioNotFound
	}
	return nil
}

// FetchStudios returns every studio whose location matches q. The date is
// accepted but does not narrow the result.
func (r *Repository) FetchStudios(ctx context.Context, q discovery.QueryParams) ([]*discovery.Studio, error) {
	rows, _, err := r.GetAll(ctx, StudioFilters{Location: q.Location})
	if err != nil {
		return nil, classifyDBError(err)
	}
	return toDiscovery(rows), nil
}

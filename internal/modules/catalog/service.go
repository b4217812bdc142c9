package catalog

import (
	"context"
	"strings"

	"studiofinder/internal/discovery"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListStudios(ctx context.Context, q ListStudiosQuery) (*StudioList, error) {
	f := q.filters()
	rows, total, err := s.repo.GetAll(ctx, f)
	if err != nil {
		return nil, err
	}

	totalPages := (int(total) + f.Limit - 1) / f.Limit
	return &StudioList{
		Studios: toDiscovery(rows),
		Pagination: Pagination{
			Page:       f.Offset/f.Limit + 1,
			Limit:      f.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *Service) GetStudio(ctx context.Context, id string) (*discovery.Studio, error) {
	row, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	return row.ToDiscovery(), nil
}

// Import stores studios in the given order, replacing any with the same id.
func (s *Service) Import(ctx context.Context, studios []*discovery.Studio) error {
	for i, st := range studios {
		if st == nil || strings.TrimSpace(st.ID) == "" {
			continue
		}
		if err := s.repo.Upsert(ctx, FromDiscovery(st, i)); err != nil {
			return err
		}
	}
	return nil
}

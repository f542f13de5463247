// Package services считает сводку для панели администратора.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/slwc/membership/internal/models"
)

// RecentWindow окно, в котором член федерации считается новым.
const RecentWindow = 30 * 24 * time.Hour

// StatsRepository источник счётчиков.
type StatsRepository interface {
	Stats(ctx context.Context, since time.Time) (models.Stats, error)
}

// StatsService сводка по федерации.
type StatsService struct {
	repo StatsRepository
	now  func() time.Time
}

// NewStatsService создает новый экземпляр StatsService.
func NewStatsService(repo StatsRepository) *StatsService {
	return &StatsService{repo: repo, now: time.Now}
}

// Stats возвращает общие счётчики и число записей за последние 30 дней.
func (s *StatsService) Stats(ctx context.Context) (models.Stats, error) {
	const op = "services.stats.Stats"
	st, err := s.repo.Stats(ctx, s.now().Add(-RecentWindow))
	if err != nil {
		return models.Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

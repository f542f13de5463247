package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/slwc/membership/internal/models"
)

// Stats считает школы, инструкторов, членов федерации и членов, записанных после since.
func (s *Storage) Stats(ctx context.Context, since time.Time) (models.Stats, error) {
	const op = "storage.Stats"
	select {
	case <-ctx.Done():
		return models.Stats{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
				(SELECT COUNT(*) FROM schools),
				(SELECT COUNT(*) FROM instructors),
				(SELECT COUNT(*) FROM subscribers),
				(SELECT COUNT(*) FROM subscribers WHERE created_at >= $1)`
	var st models.Stats
	err := s.DB.QueryRowContext(ctx, query, since).
		Scan(&st.TotalSchools, &st.TotalInstructors, &st.TotalSubscribers, &st.RecentSubscribers)
	if err != nil {
		return models.Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/slwc/membership/internal/models"
)

const schoolColumns = `sc.id, sc.name, sc.gym_name, sc.slug, sc.address, sc.created_at`

func scanSchool(row rowScanner, extra ...any) (models.School, error) {
	var s models.School
	var gymName, address sql.NullString
	dest := append([]any{&s.ID, &s.Name, &gymName, &s.Slug, &address, &s.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return models.School{}, err
	}
	s.GymName = nullString(gymName)
	s.Address = nullString(address)
	return s, nil
}

// ListSchools возвращает все школы с количеством членов и инструкторов, новые первыми.
func (s *Storage) ListSchools(ctx context.Context) ([]models.SchoolWithCounts, error) {
	const op = "storage.ListSchools"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + schoolColumns + `,
				(SELECT COUNT(*) FROM subscribers s WHERE s.school_id = sc.id),
				(SELECT COUNT(*) FROM instructors i WHERE i.school_id = sc.id)
			  FROM schools sc
			  ORDER BY sc.created_at DESC, sc.id DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []models.SchoolWithCounts
	for rows.Next() {
		var item models.SchoolWithCounts
		item.School, err = scanSchool(rows, &item.SubscriberCount, &item.InstructorCount)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// GetSchool возвращает школу по ID.
func (s *Storage) GetSchool(ctx context.Context, id int) (*models.School, error) {
	const op = "storage.GetSchool"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + schoolColumns + ` FROM schools sc WHERE sc.id = $1`
	school, err := scanSchool(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &school, nil
}

// GetSchoolBySlug возвращает школу по slug.
func (s *Storage) GetSchoolBySlug(ctx context.Context, slug string) (*models.School, error) {
	const op = "storage.GetSchoolBySlug"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + schoolColumns + ` FROM schools sc WHERE sc.slug = $1`
	school, err := scanSchool(s.DB.QueryRowContext(ctx, query, slug))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &school, nil
}

// SlugTaken сообщает, занят ли slug другой школой. excludeID = 0 проверяет все школы.
func (s *Storage) SlugTaken(ctx context.Context, slug string, excludeID int) (bool, error) {
	const op = "storage.SlugTaken"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var taken bool
	query := `SELECT EXISTS (SELECT 1 FROM schools WHERE slug = $1 AND id <> $2)`
	if err := s.DB.QueryRowContext(ctx, query, slug, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return taken, nil
}

// CreateSchool вставляет школу и возвращает её с ID и датой создания.
func (s *Storage) CreateSchool(ctx context.Context, school models.School) (*models.School, error) {
	const op = "storage.CreateSchool"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO schools (name, gym_name, slug, address)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id, created_at`
	err := s.DB.QueryRowContext(ctx, query, school.Name, school.GymName, school.Slug, school.Address).
		Scan(&school.ID, &school.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &school, nil
}

// UpdateSchool обновляет школу по ID.
func (s *Storage) UpdateSchool(ctx context.Context, school models.School) (*models.School, error) {
	const op = "storage.UpdateSchool"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE schools
			  SET name = $1, gym_name = $2, slug = $3, address = $4
			  WHERE id = $5
			  RETURNING created_at`
	err := s.DB.QueryRowContext(ctx, query, school.Name, school.GymName, school.Slug, school.Address, school.ID).
		Scan(&school.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &school, nil
}

// DeleteSchool удаляет школу. Ссылки из subscribers и instructors дают ErrConflict.
func (s *Storage) DeleteSchool(ctx context.Context, id int) error {
	const op = "storage.DeleteSchool"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM schools WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err := checkAffected(result); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CountSchoolMembers возвращает количество членов и инструкторов школы.
func (s *Storage) CountSchoolMembers(ctx context.Context, id int) (subscribers, instructors int, err error) {
	const op = "storage.CountSchoolMembers"
	select {
	case <-ctx.Done():
		return 0, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
				(SELECT COUNT(*) FROM subscribers WHERE school_id = $1),
				(SELECT COUNT(*) FROM instructors WHERE school_id = $1)`
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&subscribers, &instructors); err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	return subscribers, instructors, nil
}

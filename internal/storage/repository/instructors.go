package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/slwc/membership/internal/models"
)

const instructorColumns = `i.id, i.name, i.email, i.password_hash, i.role, i.school_id, i.subscriber_id, i.created_at, sc.name`

func scanInstructor(row rowScanner) (models.InstructorView, error) {
	var v models.InstructorView
	var subscriberID sql.NullInt64
	err := row.Scan(&v.ID, &v.Name, &v.Email, &v.PasswordHash, &v.Role, &v.SchoolID,
		&subscriberID, &v.CreatedAt, &v.SchoolName)
	if err != nil {
		return models.InstructorView{}, err
	}
	v.SubscriberID = nullInt(subscriberID)
	return v, nil
}

// ListInstructors возвращает всех инструкторов с названием школы, новые первыми.
func (s *Storage) ListInstructors(ctx context.Context) ([]models.InstructorView, error) {
	const op = "storage.ListInstructors"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + instructorColumns + `
			  FROM instructors i
			  JOIN schools sc ON sc.id = i.school_id
			  ORDER BY i.created_at DESC, i.id DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []models.InstructorView
	for rows.Next() {
		v, err := scanInstructor(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// GetInstructor возвращает инструктора по ID.
func (s *Storage) GetInstructor(ctx context.Context, id int) (*models.InstructorView, error) {
	const op = "storage.GetInstructor"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + instructorColumns + `
			  FROM instructors i
			  JOIN schools sc ON sc.id = i.school_id
			  WHERE i.id = $1`
	v, err := scanInstructor(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &v, nil
}

// GetInstructorByEmail возвращает инструктора по email.
func (s *Storage) GetInstructorByEmail(ctx context.Context, email string) (*models.InstructorView, error) {
	const op = "storage.GetInstructorByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + instructorColumns + `
			  FROM instructors i
			  JOIN schools sc ON sc.id = i.school_id
			  WHERE i.email = $1`
	v, err := scanInstructor(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &v, nil
}

// InstructorExists сообщает, есть ли инструктор с этим email или связанный с членом subscriberID.
// subscriberID = 0 проверяет только email.
func (s *Storage) InstructorExists(ctx context.Context, email string, subscriberID int) (bool, error) {
	const op = "storage.InstructorExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (
				SELECT 1 FROM instructors
				WHERE email = $1 OR ($2 > 0 AND subscriber_id = $2)
			  )`
	if err := s.DB.QueryRowContext(ctx, query, email, subscriberID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// CreateInstructor вставляет инструктора и возвращает его ID.
func (s *Storage) CreateInstructor(ctx context.Context, ins models.Instructor) (int, error) {
	const op = "storage.CreateInstructor"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO instructors (name, email, password_hash, role, school_id, subscriber_id)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		ins.Name, ins.Email, ins.PasswordHash, ins.Role, ins.SchoolID, ins.SubscriberID).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return newID, nil
}

// DeleteInstructor удаляет инструктора по ID.
func (s *Storage) DeleteInstructor(ctx context.Context, id int) error {
	const op = "storage.DeleteInstructor"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM instructors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err := checkAffected(result); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateInstructorPassword меняет хэш пароля инструктора по email.
func (s *Storage) UpdateInstructorPassword(ctx context.Context, email, passwordHash string) error {
	const op = "storage.UpdateInstructorPassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `UPDATE instructors SET password_hash = $1 WHERE email = $2`, passwordHash, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := checkAffected(result); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListInstructorEmailsBySchool возвращает адреса инструкторов школы.
func (s *Storage) ListInstructorEmailsBySchool(ctx context.Context, schoolID int) ([]string, error) {
	const op = "storage.ListInstructorEmailsBySchool"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT email FROM instructors WHERE school_id = $1 ORDER BY id`, schoolID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return emails, nil
}

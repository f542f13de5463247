package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/slwc/membership/internal/models"
)

const subscriberColumns = `s.id, s.first_name, s.last_name, s.birth_date, s.birth_place, s.birth_cap,
	s.fiscal_code, s.residence, s.residence_city, s.residence_cap, s.email, s.phone, s.duan,
	s.document_type, s.document_number, s.document_expiry, s.has_medical_cert, s.medical_cert_s3_key,
	s.qr_code, s.slwc_join_date, s.annual_payment, s.is_eps_member, s.eps_card_number, s.eps_join_date,
	s.school_id, s.created_at`

// isAlsoInstructor вычисляет связь члена федерации с учётной записью инструктора.
const isAlsoInstructor = `EXISTS (SELECT 1 FROM instructors i WHERE i.email = s.email OR i.subscriber_id = s.id)`

func scanSubscriber(row rowScanner, extra ...any) (models.Subscriber, error) {
	var sub models.Subscriber
	var docType, docNumber, certKey, epsCard sql.NullString
	var docExpiry, epsJoin sql.NullTime
	dest := append([]any{
		&sub.ID, &sub.FirstName, &sub.LastName, &sub.BirthDate, &sub.BirthPlace, &sub.BirthCap,
		&sub.FiscalCode, &sub.Residence, &sub.ResidenceCity, &sub.ResidenceCap, &sub.Email, &sub.Phone, &sub.Duan,
		&docType, &docNumber, &docExpiry, &sub.HasMedicalCert, &certKey,
		&sub.QRCode, &sub.SLWCJoinDate, &sub.AnnualPayment, &sub.IsEPSMember, &epsCard, &epsJoin,
		&sub.SchoolID, &sub.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return models.Subscriber{}, err
	}
	sub.DocumentType = nullString(docType)
	sub.DocumentNumber = nullString(docNumber)
	sub.DocumentExpiry = nullTime(docExpiry)
	sub.MedicalCertS3Key = nullString(certKey)
	sub.EPSCardNumber = nullString(epsCard)
	sub.EPSJoinDate = nullTime(epsJoin)
	return sub, nil
}

func (s *Storage) queryViews(ctx context.Context, query string, args ...any) ([]models.SubscriberView, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []models.SubscriberView
	for rows.Next() {
		var view models.SubscriberView
		view.Subscriber, err = scanSubscriber(rows, &view.SchoolName, &view.IsAlsoInstructor)
		if err != nil {
			return nil, err
		}
		res = append(res, view)
	}
	return res, rows.Err()
}

// ListSubscribers возвращает членов федерации, новые первыми.
// schoolID = 0 возвращает членов всех школ.
func (s *Storage) ListSubscribers(ctx context.Context, schoolID int) ([]models.SubscriberView, error) {
	const op = "storage.ListSubscribers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriberColumns + `, sc.name, ` + isAlsoInstructor + `
			  FROM subscribers s
			  JOIN schools sc ON sc.id = s.school_id
			  WHERE ($1 = 0 OR s.school_id = $1)
			  ORDER BY s.created_at DESC, s.id DESC`
	res, err := s.queryViews(ctx, query, schoolID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// ListPromotable возвращает членов федерации без учётной записи инструктора.
func (s *Storage) ListPromotable(ctx context.Context) ([]models.SubscriberView, error) {
	const op = "storage.ListPromotable"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriberColumns + `, sc.name, FALSE
			  FROM subscribers s
			  JOIN schools sc ON sc.id = s.school_id
			  WHERE NOT ` + isAlsoInstructor + `
			  ORDER BY s.created_at DESC, s.id DESC`
	res, err := s.queryViews(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// GetSubscriber возвращает члена федерации по ID.
func (s *Storage) GetSubscriber(ctx context.Context, id int) (*models.SubscriberView, error) {
	const op = "storage.GetSubscriber"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriberColumns + `, sc.name, ` + isAlsoInstructor + `
			  FROM subscribers s
			  JOIN schools sc ON sc.id = s.school_id
			  WHERE s.id = $1`
	var view models.SubscriberView
	var err error
	view.Subscriber, err = scanSubscriber(s.DB.QueryRowContext(ctx, query, id), &view.SchoolName, &view.IsAlsoInstructor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &view, nil
}

// SubscriberExists ищет другого члена федерации с тем же email или кодом фискале.
// excludeID = 0 проверяет всех.
func (s *Storage) SubscriberExists(ctx context.Context, email, fiscalCode string, excludeID int) (bool, error) {
	const op = "storage.SubscriberExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (
				SELECT 1 FROM subscribers
				WHERE (email = $1 OR fiscal_code = $2) AND id <> $3
			  )`
	if err := s.DB.QueryRowContext(ctx, query, email, fiscalCode, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// CreateSubscriber вставляет члена федерации и возвращает его ID.
func (s *Storage) CreateSubscriber(ctx context.Context, sub models.Subscriber) (int, error) {
	const op = "storage.CreateSubscriber"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscribers (first_name, last_name, birth_date, birth_place, birth_cap,
				fiscal_code, residence, residence_city, residence_cap, email, phone, duan,
				document_type, document_number, document_expiry, has_medical_cert, medical_cert_s3_key,
				qr_code, slwc_join_date, annual_payment, is_eps_member, eps_card_number, eps_join_date, school_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
				$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		sub.FirstName, sub.LastName, sub.BirthDate, sub.BirthPlace, sub.BirthCap,
		sub.FiscalCode, sub.Residence, sub.ResidenceCity, sub.ResidenceCap, sub.Email, sub.Phone, sub.Duan,
		sub.DocumentType, sub.DocumentNumber, sub.DocumentExpiry, sub.HasMedicalCert, sub.MedicalCertS3Key,
		sub.QRCode, sub.SLWCJoinDate, sub.AnnualPayment, sub.IsEPSMember, sub.EPSCardNumber, sub.EPSJoinDate,
		sub.SchoolID).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return newID, nil
}

// UpdateSubscriber обновляет анкету члена федерации. qr_code и created_at не меняются.
func (s *Storage) UpdateSubscriber(ctx context.Context, sub models.Subscriber) error {
	const op = "storage.UpdateSubscriber"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscribers
			  SET first_name = $1, last_name = $2, birth_date = $3, birth_place = $4, birth_cap = $5,
				fiscal_code = $6, residence = $7, residence_city = $8, residence_cap = $9, email = $10,
				phone = $11, duan = $12, document_type = $13, document_number = $14, document_expiry = $15,
				has_medical_cert = $16, medical_cert_s3_key = $17, slwc_join_date = $18, annual_payment = $19,
				is_eps_member = $20, eps_card_number = $21, eps_join_date = $22, school_id = $23
			  WHERE id = $24`
	result, err := s.DB.ExecContext(ctx, query,
		sub.FirstName, sub.LastName, sub.BirthDate, sub.BirthPlace, sub.BirthCap,
		sub.FiscalCode, sub.Residence, sub.ResidenceCity, sub.ResidenceCap, sub.Email,
		sub.Phone, sub.Duan, sub.DocumentType, sub.DocumentNumber, sub.DocumentExpiry,
		sub.HasMedicalCert, sub.MedicalCertS3Key, sub.SLWCJoinDate, sub.AnnualPayment,
		sub.IsEPSMember, sub.EPSCardNumber, sub.EPSJoinDate, sub.SchoolID,
		sub.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err := checkAffected(result); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteSubscriber удаляет члена федерации по ID.
func (s *Storage) DeleteSubscriber(ctx context.Context, id int) error {
	const op = "storage.DeleteSubscriber"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM subscribers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	if err := checkAffected(result); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListSubscribersForExport возвращает всех членов федерации с реквизитами школы, новые первыми.
func (s *Storage) ListSubscribersForExport(ctx context.Context) ([]models.SubscriberWithSchool, error) {
	const op = "storage.ListSubscribersForExport"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriberColumns + `, sc.name, sc.gym_name, sc.address
			  FROM subscribers s
			  JOIN schools sc ON sc.id = s.school_id
			  ORDER BY s.created_at DESC, s.id DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []models.SubscriberWithSchool
	for rows.Next() {
		var item models.SubscriberWithSchool
		var gymName, address sql.NullString
		item.Subscriber, err = scanSubscriber(rows, &item.SchoolName, &gymName, &address)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.SchoolGymName = nullString(gymName)
		item.SchoolAddress = nullString(address)
		res = append(res, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/slwc/membership/internal/migrations"
	"github.com/slwc/membership/internal/models"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
	seq     int
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateSchool создает тестовую школу
func (f *TestDataFactory) CreateSchool(t *testing.T, name, slug string) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO schools (name, slug) VALUES ($1, $2) RETURNING id`,
		name, slug).Scan(&id)
	require.NoError(t, err)
	return id
}

// NewSubscriber возвращает заполненного члена федерации с уникальными email, кодом и QR
func (f *TestDataFactory) NewSubscriber(schoolID int) models.Subscriber {
	f.seq++
	return models.Subscriber{
		FirstName:     "Mario",
		LastName:      "Rossi",
		BirthDate:     time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		BirthPlace:    "Roma",
		BirthCap:      "00100",
		FiscalCode:    fmt.Sprintf("RSSMRA90E17H5%03d", f.seq),
		Residence:     "Via Roma 1",
		ResidenceCity: "Roma",
		ResidenceCap:  "00100",
		Email:         fmt.Sprintf("mario%d@example.com", f.seq),
		Phone:         "3331234567",
		Duan:          3,
		QRCode:        fmt.Sprintf("SLWC_%d_test%05d", time.Now().UnixMilli(), f.seq),
		SLWCJoinDate:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		SchoolID:      schoolID,
	}
}

// CreateSubscriber создает тестового члена федерации
func (f *TestDataFactory) CreateSubscriber(t *testing.T, schoolID int) models.Subscriber {
	sub := f.NewSubscriber(schoolID)
	id, err := f.storage.CreateSubscriber(context.Background(), sub)
	require.NoError(t, err)
	sub.ID = id
	return sub
}

// CreateInstructor создает тестового инструктора
func (f *TestDataFactory) CreateInstructor(t *testing.T, email, role string, schoolID int, subscriberID *int) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO instructors (name, email, password_hash, role, school_id, subscriber_id)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		"Istruttore", email, "hashedpassword", role, schoolID, subscriberID).Scan(&id)
	require.NoError(t, err)
	return id
}

// TestVerification содержит общие функции для проверки результатов тестов
type TestVerification struct {
	storage *Storage
}

// NewTestVerification создает новый объект для проверки результатов
func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

// VerifyCount проверяет количество строк таблицы с заданным id
func (v *TestVerification) VerifyCount(t *testing.T, table string, id, expected int) {
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE id = $1", id).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, expected, count)
}

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "Failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	_, err = migrations.Run(storage.DB, migrationsPath)
	require.NoError(t, err)

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return storage, cleanup
}

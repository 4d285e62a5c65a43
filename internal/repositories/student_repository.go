package repositories

import (
	"context"
	"errors"

	"fees-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StudentRepository reads the minimal student projection this engine needs.
// Student records are owned elsewhere; this is a read-only view.
type StudentRepository struct {
	DB *pgxpool.Pool
}

func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) Get(ctx context.Context, id string) (*models.Student, error) {
	query := `
		SELECT id, tenant_id, name, COALESCE(guardian_name, ''), COALESCE(guardian_phone, ''),
		       COALESCE(preferred_channel, 'sms')
		FROM students
		WHERE id = $1
	`
	s := &models.Student{}
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.TenantID, &s.Name, &s.GuardianName, &s.GuardianPhone, &s.PreferredChannel,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

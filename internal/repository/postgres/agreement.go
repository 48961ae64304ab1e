package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/pactpal-server/internal/model"
)

const uniqueViolation = "23505"

// querier is the subset of *pgxpool.Pool used by AgreementRepository.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

var _ model.RemoteAgreementStore = (*AgreementRepository)(nil)

// AgreementRepository stores agreements in the remote agreements table.
// Deleted rows are kept with is_deleted set and never returned.
type AgreementRepository struct {
	db querier
}

func NewAgreementRepository(db *Connection) *AgreementRepository {
	return &AgreementRepository{
		db: db,
	}
}

const selectColumns = `id, message, created_at, creator_id, creator_name, recipient_id, recipient_name, status, delete_requested_by, is_deleted`

// agreementRow holds the nullable columns of one agreements row.
type agreementRow struct {
	ID                string
	Message           string
	CreatedAt         time.Time
	CreatorID         *string
	CreatorName       *string
	RecipientID       *string
	RecipientName     *string
	Status            string
	DeleteRequestedBy []string
	IsDeleted         bool
}

func (r *agreementRow) scanTargets() []any {
	return []any{
		&r.ID, &r.Message, &r.CreatedAt, &r.CreatorID, &r.CreatorName,
		&r.RecipientID, &r.RecipientName, &r.Status, &r.DeleteRequestedBy, &r.IsDeleted,
	}
}

// toAgreement maps a row to the local shape: a missing creator name becomes
// model.DefaultCreatorName and a NULL delete set becomes empty.
func (r agreementRow) toAgreement() model.Agreement {
	a := model.Agreement{
		ID:                r.ID,
		Message:           r.Message,
		CreatedAt:         r.CreatedAt,
		CreatorID:         deref(r.CreatorID),
		CreatorName:       deref(r.CreatorName),
		RecipientID:       deref(r.RecipientID),
		RecipientName:     deref(r.RecipientName),
		Status:            model.AgreementStatus(r.Status),
		DeleteRequestedBy: r.DeleteRequestedBy,
		IsDeleted:         r.IsDeleted,
	}
	if a.CreatorName == "" {
		a.CreatorName = model.DefaultCreatorName
	}
	if a.DeleteRequestedBy == nil {
		a.DeleteRequestedBy = []string{}
	}
	return a
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deleteSet(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func (r *AgreementRepository) GetByID(ctx context.Context, id string) (model.Agreement, error) {
	query := `SELECT ` + selectColumns + `
		FROM agreements
		WHERE id = $1 AND is_deleted = false`

	var row agreementRow
	err := r.db.QueryRow(ctx, query, id).Scan(row.scanTargets()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Agreement{}, model.ErrNotFound
		}
		return model.Agreement{}, err
	}

	return row.toAgreement(), nil
}

func (r *AgreementRepository) GetForUser(ctx context.Context, userID string) ([]model.Agreement, error) {
	query := `SELECT ` + selectColumns + `
		FROM agreements
		WHERE (creator_id = $1 OR recipient_id = $1) AND is_deleted = false
		ORDER BY created_at DESC`

	return r.list(ctx, query, userID)
}

func (r *AgreementRepository) GetAll(ctx context.Context) ([]model.Agreement, error) {
	query := `SELECT ` + selectColumns + `
		FROM agreements
		WHERE is_deleted = false
		ORDER BY created_at DESC`

	return r.list(ctx, query)
}

func (r *AgreementRepository) list(ctx context.Context, query string, args ...any) ([]model.Agreement, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	agreements := []model.Agreement{}
	for rows.Next() {
		var row agreementRow
		if err := rows.Scan(row.scanTargets()...); err != nil {
			return nil, err
		}
		agreements = append(agreements, row.toAgreement())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return agreements, nil
}

// Create inserts agreement and returns the stored id.
func (r *AgreementRepository) Create(ctx context.Context, agreement model.Agreement) (string, error) {
	if agreement.Message == "" {
		return "", fmt.Errorf("agreement message is required")
	}

	query := `
		INSERT INTO agreements (id, message, created_at, creator_id, creator_name, recipient_id, recipient_name, status, delete_requested_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	var id string
	err := r.db.QueryRow(ctx, query,
		agreement.ID, agreement.Message, agreement.CreatedAt,
		agreement.CreatorID, nullable(agreement.CreatorName),
		nullable(agreement.RecipientID), nullable(agreement.RecipientName),
		string(agreement.Status), deleteSet(agreement.DeleteRequestedBy),
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", model.ErrAlreadyExists
		}
		return "", err
	}

	return id, nil
}

// Update writes every mutable column of a live agreement. A soft deleted row
// is left as is and reported as not found.
func (r *AgreementRepository) Update(ctx context.Context, agreement model.Agreement) error {
	const query = `
		UPDATE agreements
		SET message = $2,
		    creator_name = $3,
		    recipient_id = $4,
		    recipient_name = $5,
		    status = $6,
		    delete_requested_by = $7,
		    updated_at = NOW()
		WHERE id = $1 AND is_deleted = false`

	cmd, err := r.db.Exec(ctx, query,
		agreement.ID, agreement.Message, nullable(agreement.CreatorName),
		nullable(agreement.RecipientID), nullable(agreement.RecipientName),
		string(agreement.Status), deleteSet(agreement.DeleteRequestedBy),
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *AgreementRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE agreements SET is_deleted = true, updated_at = NOW() WHERE id = $1 AND is_deleted = false`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *AgreementRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

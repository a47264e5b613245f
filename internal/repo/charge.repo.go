package repo

import (
	"context"
	"database/sql"
	"time"

	"pix-charge-api/internal/domain"
)

type ChargeRepo interface {
	Create(ctx context.Context, charge domain.Charge) (*domain.Charge, error)
	FindById(ctx context.Context, id string) (*domain.Charge, error)
	UpdateStatus(ctx context.Context, id string, status domain.ChargeStatus) error
}

type chargeRepo struct {
	db *sql.DB
}

func NewChargeRepo(db *sql.DB) ChargeRepo {
	return &chargeRepo{db: db}
}

func (r *chargeRepo) Create(ctx context.Context, charge domain.Charge) (*domain.Charge, error) {
	query := `
		INSERT INTO charges (id, payer_name, payer_document, amount, description, pix_key, expiration_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, payer_name, payer_document, amount, description, pix_key, expiration_date, status, created_at
	`
	row := r.db.QueryRowContext(ctx, query,
		charge.ID,
		charge.PayerName,
		charge.PayerDocument,
		charge.Amount,
		charge.Description,
		nullString(charge.PixKey),
		nullTime(charge.ExpirationDate),
		charge.Status,
		charge.CreatedAt,
	)
	return scanCharge(row)
}

func (r *chargeRepo) FindById(ctx context.Context, id string) (*domain.Charge, error) {
	query := `
		SELECT id, payer_name, payer_document, amount, description, pix_key, expiration_date, status, created_at
		FROM charges WHERE id = $1
	`
	charge, err := scanCharge(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err // system error
	}
	return charge, nil
}

func (r *chargeRepo) UpdateStatus(ctx context.Context, id string, status domain.ChargeStatus) error {
	_, err := r.db.ExecContext(ctx, "UPDATE charges SET status = $1 WHERE id = $2", status, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharge(row rowScanner) (*domain.Charge, error) {
	var (
		charge     domain.Charge
		pixKey     sql.NullString
		expiration sql.NullTime
	)
	err := row.Scan(
		&charge.ID,
		&charge.PayerName,
		&charge.PayerDocument,
		&charge.Amount,
		&charge.Description,
		&pixKey,
		&expiration,
		&charge.Status,
		&charge.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	charge.PixKey = pixKey.String
	if expiration.Valid {
		t := expiration.Time
		charge.ExpirationDate = &t
	}
	return &charge, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

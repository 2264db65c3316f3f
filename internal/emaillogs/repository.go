package emaillogs

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stagepass/backend/internal/models"
)

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record inserts a delivery attempt outcome.
func (r *Repository) Record(ctx context.Context, emailType, recipient, subject, status string, sendErr error) error {
	var errMsg *string
	if sendErr != nil {
		s := sendErr.Error()
		errMsg = &s
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO email_logs (email_type, recipient_email, subject, status, error)
		VALUES ($1, $2, $3, $4, $5)`, emailType, recipient, subject, status, errMsg)
	return err
}

// ListRecent returns the latest delivery attempts, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*models.EmailLog, error) {
	const q = `SELECT id, email_type, recipient_email, subject, status, error, created_at
		FROM email_logs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.EmailLog
	for rows.Next() {
		var el models.EmailLog
		if err := rows.Scan(&el.ID, &el.EmailType, &el.RecipientEmail, &el.Subject, &el.Status, &el.Error, &el.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &el)
	}
	return list, rows.Err()
}

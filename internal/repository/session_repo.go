package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"buysmart/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresSessionRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresSessionRepository(db *sql.DB, logger *logrus.Logger) domain.SessionRepository {
	return &postgresSessionRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresSessionRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO sessions (token, customer_id, expires_at)
        VALUES ($1, $2, $3)`,
		session.Token, session.CustomerID, session.ExpiresAt,
	)
	if err != nil {
		r.log.Errorf("Failed to create session for customer %d: %v", session.CustomerID, err)
		return fmt.Errorf("could not create session: %w", err)
	}
	r.log.Debugf("Session created for customer %d (expires %s)", session.CustomerID, session.ExpiresAt)
	return nil
}

func (r *postgresSessionRepository) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	session := &domain.Session{}
	err := r.db.QueryRowContext(ctx, `
        SELECT token, customer_id, expires_at
        FROM sessions
        WHERE token = $1 AND expires_at > NOW()`,
		token,
	).Scan(&session.Token, &session.CustomerID, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session: %w", domain.ErrNotFound)
		}
		r.log.Errorf("Failed to look up session: %v", err)
		return nil, fmt.Errorf("could not look up session: %w", err)
	}
	return session, nil
}

func (r *postgresSessionRepository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		r.log.Errorf("Failed to delete session: %v", err)
		return fmt.Errorf("could not delete session: %w", err)
	}
	return nil
}

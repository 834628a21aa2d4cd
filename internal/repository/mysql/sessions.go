package mysql

import (
	"context"

	"github.com/Austinpowers7/storehive-backend/internal/entity"
)

type SessionRepository struct {
	q querier
}

func (r *SessionRepository) Create(ctx context.Context, session *entity.CashierSession) error {
	query := `INSERT INTO cashier_sessions (id, session_code, qr_code, cashier_id, store_id, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query, session.ID, session.SessionCode, session.QRCode, session.CashierID,
		session.StoreID, session.Active, session.CreatedAt)
	return mapError(err)
}

func (r *SessionRepository) FindActiveByCashier(ctx context.Context, cashierID string) (*entity.CashierSession, error) {
	var session entity.CashierSession
	query := `SELECT id, session_code, qr_code, cashier_id, store_id, active, created_at
		FROM cashier_sessions WHERE cashier_id = ? AND active = 1 ORDER BY created_at DESC LIMIT 1`
	err := r.q.QueryRowContext(ctx, query, cashierID).Scan(&session.ID, &session.SessionCode, &session.QRCode,
		&session.CashierID, &session.StoreID, &session.Active, &session.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &session, nil
}

func (r *SessionRepository) Deactivate(ctx context.Context, id string) error {
	return execAffecting(ctx, r.q, `UPDATE cashier_sessions SET active = 0 WHERE id = ? AND active = 1`, id)
}

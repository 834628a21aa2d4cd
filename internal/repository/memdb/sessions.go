package memdb

import (
	"context"

	"github.com/hashicorp/go-memdb"

	"github.com/Austinpowers7/storehive-backend/internal/entity"
	"github.com/Austinpowers7/storehive-backend/internal/repository"
)

type SessionRepository struct {
	r runner
}

func (sr *SessionRepository) Create(ctx context.Context, session *entity.CashierSession) error {
	return sr.r.write(ctx, func(txn *memdb.Txn) error {
		if ok, err := exists(txn, tableSessions, "id", session.ID); err != nil || ok {
			return conflictOr(err)
		}
		if ok, err := exists(txn, tableSessions, "code", session.SessionCode); err != nil || ok {
			return conflictOr(err)
		}
		s := *session
		return txn.Insert(tableSessions, &s)
	})
}

func (sr *SessionRepository) FindActiveByCashier(ctx context.Context, cashierID string) (*entity.CashierSession, error) {
	var session *entity.CashierSession
	err := sr.r.read(ctx, func(txn *memdb.Txn) error {
		sessions, err := collect(txn, func(s *entity.CashierSession) bool { return s.Active }, tableSessions, "cashier", cashierID)
		if err != nil {
			return err
		}
		for i := range sessions {
			if session == nil || sessions[i].CreatedAt.After(session.CreatedAt) {
				session = &sessions[i]
			}
		}
		if session == nil {
			return repository.ErrNotFound
		}
		return nil
	})
	return session, err
}

func (sr *SessionRepository) Deactivate(ctx context.Context, id string) error {
	return sr.r.write(ctx, func(txn *memdb.Txn) error {
		session, err := first[entity.CashierSession](txn, tableSessions, "id", id)
		if err != nil {
			return err
		}
		if !session.Active {
			return repository.ErrNotFound
		}
		session.Active = false
		return txn.Insert(tableSessions, session)
	})
}

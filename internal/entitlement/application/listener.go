package application

import (
	"context"

	"github.com/felixgeelhaar/entitle/internal/entitlement/domain"
)

// runTransactionListener consumes the platform's transaction-update stream
// for the configuration lifetime. It starts exactly once, survives
// login/logout, and stops only when ctx is cancelled at process teardown.
// A single bad event never terminates the loop.
func (s *Synchronizer) runTransactionListener(ctx context.Context) {
	updates := s.platform.TransactionUpdates()
	s.logger.Debug("transaction listener started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("transaction listener stopped")
			return
		case tx, ok := <-updates:
			if !ok {
				s.logger.Warn("platform transaction stream closed")
				return
			}
			s.handleTransactionUpdate(ctx, tx)
		}
	}
}

func (s *Synchronizer) handleTransactionUpdate(ctx context.Context, tx domain.Transaction) {
	if !tx.Verified {
		s.logger.Warn("dropping unverifiable transaction update", "transaction_id", tx.ID)
		return
	}

	if _, err := s.verifyAndFinalize(ctx, tx); err != nil {
		s.logger.Warn("transaction update verification failed",
			"transaction_id", tx.ID,
			"product_id", tx.ProductID,
			"error", err,
		)
	}
}

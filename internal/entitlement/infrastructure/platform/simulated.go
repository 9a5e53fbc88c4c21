// Package platform provides a simulated purchase provider. Real embedders
// bridge their store's purchase mechanism to domain.PurchaseProvider; the
// simulator backs the CLI and local development, where no store exists.
package platform

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/entitle/internal/entitlement/domain"
	"github.com/google/uuid"
)

// Simulated is an in-memory purchase provider with a fixed catalog. Every
// purchase succeeds as a platform-verified transaction.
type Simulated struct {
	mu       sync.Mutex
	catalog  map[string]domain.Product
	owned    []domain.Transaction
	finished map[string]bool
	updates  chan domain.Transaction
}

// DefaultCatalog is the product set the CLI simulator sells.
func DefaultCatalog() []domain.Product {
	return []domain.Product{
		{ID: "premium_monthly", DisplayName: "Premium Monthly", Description: "Premium, billed monthly", Price: 9.99, Currency: "USD"},
		{ID: "premium_yearly", DisplayName: "Premium Yearly", Description: "Premium, billed yearly", Price: 99.99, Currency: "USD"},
		{ID: "lifetime", DisplayName: "Lifetime", Description: "One-time lifetime unlock", Price: 249.99, Currency: "USD"},
	}
}

// NewSimulated creates a simulator selling the given products.
func NewSimulated(products []domain.Product) *Simulated {
	catalog := make(map[string]domain.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}
	return &Simulated{
		catalog:  catalog,
		finished: map[string]bool{},
		updates:  make(chan domain.Transaction, 16),
	}
}

// Products looks up catalog entries; unknown ids are omitted.
func (s *Simulated) Products(ctx context.Context, ids []string) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Product
	for _, id := range ids {
		if product, ok := s.catalog[id]; ok {
			out = append(out, product)
		}
	}
	return out, nil
}

// Purchase records a verified transaction for the product.
func (s *Simulated) Purchase(ctx context.Context, productID string) (domain.PurchaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalog[productID]; !ok {
		return domain.PurchaseResult{Outcome: domain.OutcomeUnknown}, nil
	}

	tx := domain.Transaction{
		ID:        uuid.NewString(),
		ProductID: productID,
		Verified:  true,
	}
	s.owned = append(s.owned, tx)
	return domain.PurchaseResult{Outcome: domain.OutcomeVerified, Transaction: tx}, nil
}

// TransactionUpdates returns the simulator's event stream. Tests and demos
// inject events with EmitUpdate.
func (s *Simulated) TransactionUpdates() <-chan domain.Transaction {
	return s.updates
}

// EmitUpdate pushes a transaction event into the update stream.
func (s *Simulated) EmitUpdate(tx domain.Transaction) {
	s.updates <- tx
}

// SyncPurchases is a no-op; the simulator's records are always current.
func (s *Simulated) SyncPurchases(ctx context.Context) error {
	return nil
}

// CurrentEntitlements returns every owned transaction.
func (s *Simulated) CurrentEntitlements(ctx context.Context) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Transaction, len(s.owned))
	copy(out, s.owned)
	return out, nil
}

// Finish acknowledges a transaction.
func (s *Simulated) Finish(ctx context.Context, tx domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished[tx.ID] = true
	return nil
}

// Finished reports whether the transaction was acknowledged.
func (s *Simulated) Finished(txID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished[txID]
}

var _ domain.PurchaseProvider = (*Simulated)(nil)

package domain

import "context"

// PurchaseOutcome classifies the result of a platform purchase attempt.
type PurchaseOutcome int

const (
	// OutcomeVerified means the platform completed payment and could verify
	// the transaction locally.
	OutcomeVerified PurchaseOutcome = iota

	// OutcomeUnverified means payment completed but the platform could not
	// verify the transaction. It must stay unfinished so the listener or a
	// retry can pick it up.
	OutcomeUnverified

	// OutcomeCancelled means the user backed out.
	OutcomeCancelled

	// OutcomePending means the purchase awaits external approval
	// (parental consent, deferred payment).
	OutcomePending

	// OutcomeUnknown covers anything the platform reports that the above
	// do not.
	OutcomeUnknown
)

// Product describes a purchasable item in the platform catalog.
type Product struct {
	ID          string
	DisplayName string
	Description string
	Price       float64
	Currency    string
}

// Transaction is a platform purchase record awaiting backend verification.
type Transaction struct {
	ID        string
	ProductID string
	Verified  bool
}

// PurchaseResult is what the platform reports for a purchase attempt. The
// Transaction field is meaningful only for the verified and unverified
// outcomes.
type PurchaseResult struct {
	Outcome     PurchaseOutcome
	Transaction Transaction
}

// PurchaseProvider is the port to the platform purchase mechanism. The
// platform owns payment processing entirely; this library only reconciles
// its transactions with the backend.
type PurchaseProvider interface {
	// Products looks up catalog entries for the given identifiers. Unknown
	// identifiers are omitted from the result, not errors.
	Products(ctx context.Context, ids []string) ([]Product, error)

	// Purchase runs the platform payment flow for one product.
	Purchase(ctx context.Context, productID string) (PurchaseResult, error)

	// TransactionUpdates is the platform's continuous stream of transaction
	// events. The channel stays open for the life of the provider.
	TransactionUpdates() <-chan Transaction

	// SyncPurchases asks the platform to resynchronize its purchase
	// records with the store.
	SyncPurchases(ctx context.Context) error

	// CurrentEntitlements enumerates transactions the platform currently
	// considers entitled.
	CurrentEntitlements(ctx context.Context) ([]Transaction, error)

	// Finish acknowledges a transaction with the platform. Call only after
	// the backend verified it.
	Finish(ctx context.Context, tx Transaction) error
}

// Package application orchestrates entitlement synchronization: purchases,
// restores, identity changes and refreshes all funnel through the
// Synchronizer, which owns the authoritative in-memory snapshot.
package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/entitle/internal/entitlement/domain"
	"github.com/felixgeelhaar/entitle/internal/entitlement/infrastructure/cache"
	"github.com/felixgeelhaar/entitle/internal/identity"
	"github.com/felixgeelhaar/entitle/internal/shared/infrastructure/eventbus"
)

// RemoteClient is the port to the entitlement backend.
type RemoteClient interface {
	// FetchSnapshot reads the authoritative snapshot for a user.
	FetchSnapshot(ctx context.Context, userID string) (*domain.CustomerSnapshot, error)

	// VerifyTransaction verifies a platform transaction and returns the
	// updated snapshot.
	VerifyTransaction(ctx context.Context, transactionID, userID string) (*domain.CustomerSnapshot, error)
}

// RemoteClientFactory builds a remote client once the API key and endpoint
// are known at configure time.
type RemoteClientFactory func(apiKey, baseURL string) RemoteClient

// Configuration carries the parameters of Configure.
type Configuration struct {
	// APIKey authenticates every backend call.
	APIKey string

	// UserID is the application-supplied identity. Empty means resolve an
	// anonymous identity.
	UserID string

	// BaseURL overrides the production endpoint when non-empty.
	BaseURL string
}

// Dependencies are the collaborators a Synchronizer is built from.
type Dependencies struct {
	Platform        domain.PurchaseProvider
	Identity        *identity.Manager
	Cache           *cache.SnapshotCache
	Bus             eventbus.Publisher
	NewRemoteClient RemoteClientFactory
	Logger          *slog.Logger
}

// Synchronizer reconciles platform purchase transactions with the backend
// and maintains the published customer snapshot. Construct one per process
// in the application's composition root; there is no package-level shared
// instance.
type Synchronizer struct {
	platform  domain.PurchaseProvider
	identity  *identity.Manager
	cache     *cache.SnapshotCache
	bus       eventbus.Publisher
	newClient RemoteClientFactory
	logger    *slog.Logger

	// tasks tracks transient background refreshes; the long-lived listener
	// is tracked separately so awaiting refresh quiescence never blocks on
	// it.
	tasks    *TaskRegistry
	listener *TaskRegistry

	mu         sync.RWMutex
	configured bool
	userID     string
	client     RemoteClient
	snapshot   *domain.CustomerSnapshot
	offerings  []domain.Offering
	purchasing bool

	runCtx context.Context
	stop   context.CancelFunc
}

// NewSynchronizer wires a synchronizer from its collaborators. It stays
// Unconfigured until Configure is called.
func NewSynchronizer(deps Dependencies) *Synchronizer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bus := deps.Bus
	if bus == nil {
		bus = eventbus.NoopPublisher{}
	}
	return &Synchronizer{
		platform:  deps.Platform,
		identity:  deps.Identity,
		cache:     deps.Cache,
		bus:       bus,
		newClient: deps.NewRemoteClient,
		logger:    logger,
		tasks:     NewTaskRegistry(logger),
		listener:  NewTaskRegistry(logger),
	}
}

// Configure transitions the synchronizer to Configured: it fixes identity
// and endpoint, starts the transaction listener, seeds the snapshot from the
// cache synchronously and schedules an asynchronous refresh. Observers may
// therefore see the snapshot change twice in quick succession.
//
// The listener and all background work run until ctx is cancelled or Close
// is called, so pass the process-lifetime context, not a request-scoped one.
// Configuring twice is a warned no-op; the first configuration wins.
func (s *Synchronizer) Configure(ctx context.Context, cfg Configuration) error {
	s.mu.Lock()
	if s.configured {
		s.mu.Unlock()
		s.logger.Warn("synchronizer already configured, ignoring second configuration")
		return nil
	}

	userID := cfg.UserID
	if userID == "" {
		resolved, err := s.identity.ResolveAnonymousID(ctx)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("resolve anonymous identity: %w", err)
		}
		userID = resolved
	}

	s.userID = userID
	s.client = s.newClient(cfg.APIKey, cfg.BaseURL)
	s.runCtx, s.stop = context.WithCancel(ctx)
	s.configured = true
	runCtx := s.runCtx
	s.mu.Unlock()

	s.logger.Info("configured", "user_id", userID, "anonymous", identity.IsAnonymous(userID))

	// Seed from cache synchronously so callers see data immediately. A cache
	// written under a different identity is discarded, never served.
	if cached := s.cache.Load(ctx); cached != nil {
		if cached.UserID == userID {
			s.apply(ctx, cached)
		} else {
			s.logger.Warn("discarding cached snapshot for different identity",
				"cached_user_id", cached.UserID,
				"user_id", userID,
			)
			s.cache.Clear(ctx)
		}
	}

	s.listener.Go("transaction-listener", func() {
		s.runTransactionListener(runCtx)
	})
	s.tasks.Go("initial-refresh", func() {
		s.backgroundRefresh(runCtx)
	})
	return nil
}

// Close stops the listener and waits for background work to finish.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	stop := s.stop
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
	s.listener.Wait()
	s.tasks.Wait()
}

// LogIn replaces the current identity with an application-supplied one,
// clears the cache unconditionally and returns a forced fresh fetch.
func (s *Synchronizer) LogIn(ctx context.Context, userID string) (*domain.CustomerSnapshot, error) {
	if err := s.requireConfigured(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	previous := s.userID
	s.userID = userID
	s.snapshot = nil
	s.mu.Unlock()

	s.cache.Clear(ctx)
	s.logger.Info("logged in", "user_id", userID, "previous_anonymous", identity.IsAnonymous(previous))

	return s.fetchAndApply(ctx)
}

// LogOut mints a brand-new anonymous identity (never resuming the persisted
// one), clears the cache and returns a forced fresh fetch.
func (s *Synchronizer) LogOut(ctx context.Context) (*domain.CustomerSnapshot, error) {
	if err := s.requireConfigured(); err != nil {
		return nil, err
	}

	fresh := s.identity.MintFreshAnonymousID()

	s.mu.Lock()
	s.userID = fresh
	s.snapshot = nil
	s.mu.Unlock()

	s.cache.Clear(ctx)
	s.logger.Info("logged out", "user_id", fresh)

	return s.fetchAndApply(ctx)
}

// Purchase runs the platform payment flow for productID, verifies the
// resulting transaction with the backend and finalizes it with the platform
// only after verification succeeds.
func (s *Synchronizer) Purchase(ctx context.Context, productID string) (*domain.CustomerSnapshot, error) {
	if err := s.requireConfigured(); err != nil {
		return nil, err
	}

	s.setPurchasing(true)
	defer s.setPurchasing(false)

	products, err := s.platform.Products(ctx, []string{productID})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnknown, err)
	}
	if len(products) == 0 {
		return nil, &domain.ProductNotFoundError{ProductID: productID}
	}

	result, err := s.platform.Purchase(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnknown, err)
	}

	switch result.Outcome {
	case domain.OutcomeVerified:
		snapshot, err := s.verifyAndFinalize(ctx, result.Transaction)
		if err != nil {
			return nil, err
		}
		return snapshot, nil
	case domain.OutcomeUnverified:
		// Leave the transaction unfinished so the listener or a retry can
		// pick it up.
		return nil, domain.ErrVerificationFailed
	case domain.OutcomeCancelled:
		return nil, domain.ErrPurchaseCancelled
	case domain.OutcomePending:
		return nil, domain.ErrPurchasePending
	default:
		return nil, domain.ErrUnknown
	}
}

// RestorePurchases resynchronizes the platform's purchase records, verifies
// every currently-entitled transaction best-effort, then returns a forced
// fresh fetch. A single verification failure never aborts the restore.
func (s *Synchronizer) RestorePurchases(ctx context.Context) (*domain.CustomerSnapshot, error) {
	if err := s.requireConfigured(); err != nil {
		return nil, err
	}

	s.setPurchasing(true)
	defer s.setPurchasing(false)

	if err := s.platform.SyncPurchases(ctx); err != nil {
		s.logger.Warn("platform purchase sync failed", "error", err)
	}

	transactions, err := s.platform.CurrentEntitlements(ctx)
	if err != nil {
		s.logger.Warn("failed to enumerate entitled transactions", "error", err)
	}
	for _, tx := range transactions {
		if _, err := s.verifyAndFinalize(ctx, tx); err != nil {
			s.logger.Warn("restore verification failed",
				"transaction_id", tx.ID,
				"product_id", tx.ProductID,
				"error", err,
			)
		}
	}

	return s.fetchAndApply(ctx)
}

// Refresh returns the current snapshot. With an in-memory snapshot and
// forceNetwork false it returns immediately and kicks a fire-and-forget
// background refresh; otherwise it fetches synchronously.
func (s *Synchronizer) Refresh(ctx context.Context, forceNetwork bool) (*domain.CustomerSnapshot, error) {
	if err := s.requireConfigured(); err != nil {
		return nil, err
	}

	if !forceNetwork {
		s.mu.RLock()
		snapshot := s.snapshot
		runCtx := s.runCtx
		s.mu.RUnlock()
		if snapshot != nil {
			s.tasks.Go("background-refresh", func() {
				s.backgroundRefresh(runCtx)
			})
			return snapshot, nil
		}
	}

	return s.fetchAndApply(ctx)
}

// GetCustomerInfo returns the customer snapshot, preferring the in-memory
// copy and refreshing it in the background.
func (s *Synchronizer) GetCustomerInfo(ctx context.Context) (*domain.CustomerSnapshot, error) {
	return s.Refresh(ctx, false)
}

// GetProducts looks up catalog entries for the given product identifiers.
func (s *Synchronizer) GetProducts(ctx context.Context, ids []string) ([]domain.Product, error) {
	if err := s.requireConfigured(); err != nil {
		return nil, err
	}
	return s.platform.Products(ctx, ids)
}

// LoadOfferings groups catalog products into named offerings and publishes
// them as the current offerings. A missing or empty id group yields an
// offering with zero packages, not an error.
func (s *Synchronizer) LoadOfferings(ctx context.Context, groups map[string][]string) ([]domain.Offering, error) {
	if err := s.requireConfigured(); err != nil {
		return nil, err
	}

	var allIDs []string
	for _, ids := range groups {
		allIDs = append(allIDs, ids...)
	}

	byID := map[string]domain.Product{}
	if len(allIDs) > 0 {
		products, err := s.platform.Products(ctx, allIDs)
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			byID[p.ID] = p
		}
	}

	offerings := make([]domain.Offering, 0, len(groups))
	for name, ids := range groups {
		offering := domain.Offering{Identifier: name, Packages: []domain.Package{}}
		for _, id := range ids {
			product, ok := byID[id]
			if !ok {
				s.logger.Debug("offering references unknown product", "offering", name, "product_id", id)
				continue
			}
			offering.Packages = append(offering.Packages, domain.Package{
				Identifier: id,
				Product:    product,
			})
		}
		offerings = append(offerings, offering)
	}

	s.mu.Lock()
	s.offerings = offerings
	s.mu.Unlock()
	return offerings, nil
}

// Snapshot returns the current in-memory snapshot, or nil before the first
// load.
func (s *Synchronizer) Snapshot() *domain.CustomerSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Offerings returns the most recently loaded offerings.
func (s *Synchronizer) Offerings() []domain.Offering {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offerings
}

// IsPurchasing reports whether a purchase or restore is in flight.
func (s *Synchronizer) IsPurchasing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.purchasing
}

// CurrentUserID returns the identity operations run under.
func (s *Synchronizer) CurrentUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// WaitForBackgroundWork blocks until detached tasks are quiescent. Intended
// for tests and teardown.
func (s *Synchronizer) WaitForBackgroundWork() {
	s.tasks.Wait()
}

func (s *Synchronizer) requireConfigured() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.configured {
		return domain.ErrNotConfigured
	}
	return nil
}

func (s *Synchronizer) setPurchasing(busy bool) {
	s.mu.Lock()
	s.purchasing = busy
	s.mu.Unlock()
}

// verifyAndFinalize verifies one transaction with the backend, finalizes it
// with the platform only after success and applies the returned snapshot.
func (s *Synchronizer) verifyAndFinalize(ctx context.Context, tx domain.Transaction) (*domain.CustomerSnapshot, error) {
	s.mu.RLock()
	client := s.client
	userID := s.userID
	s.mu.RUnlock()

	snapshot, err := client.VerifyTransaction(ctx, tx.ID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.platform.Finish(ctx, tx); err != nil {
		// Verification already succeeded; the platform will redeliver the
		// unfinished transaction and the listener will finalize it then.
		s.logger.Warn("failed to finalize transaction", "transaction_id", tx.ID, "error", err)
	}

	s.apply(ctx, snapshot)
	return snapshot, nil
}

// fetchAndApply is the forced fetch: cache-bypassing, synchronous, updating
// memory and cache before returning.
func (s *Synchronizer) fetchAndApply(ctx context.Context) (*domain.CustomerSnapshot, error) {
	s.mu.RLock()
	client := s.client
	userID := s.userID
	s.mu.RUnlock()

	snapshot, err := client.FetchSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.apply(ctx, snapshot)
	return snapshot, nil
}

// backgroundRefresh is fire-and-forget: its result is never awaited and its
// failures are logged, not surfaced.
func (s *Synchronizer) backgroundRefresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.fetchAndApply(ctx); err != nil {
		s.logger.Warn("background refresh failed", "error", err)
	}
}

// apply replaces the in-memory snapshot as a whole unit, mirrors it to the
// cache and publishes the change. Overlapping refreshes resolve
// last-write-wins by completion order.
func (s *Synchronizer) apply(ctx context.Context, snapshot *domain.CustomerSnapshot) {
	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	s.cache.Save(ctx, snapshot)
	s.publishChanged(ctx, snapshot)
}

func (s *Synchronizer) publishChanged(ctx context.Context, snapshot *domain.CustomerSnapshot) {
	event := domain.NewCustomerInfoChanged(snapshot)
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("failed to encode snapshot event", "error", err)
		return
	}
	if err := s.bus.Publish(ctx, event.RoutingKey(), payload); err != nil {
		s.logger.Warn("failed to publish snapshot event", "error", err)
	}
}

package domain

import "time"

// Store identifies where a purchase originated.
type Store string

const (
	StoreAppStore    Store = "app_store"
	StorePlayStore   Store = "play_store"
	StoreStripe      Store = "stripe"
	StorePromotional Store = "promotional"
)

// ExpiringSoonWindow is the lookahead used by Entitlement.IsExpiringSoon.
const ExpiringSoonWindow = 7 * 24 * time.Hour

// Entitlement is a named access grant tied to a purchased product.
type Entitlement struct {
	IsActive  bool       `json:"isActive"`
	ProductID string     `json:"productId"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	WillRenew bool       `json:"willRenew"`
	Store     Store      `json:"store,omitempty"`
}

// IsExpiringSoon reports whether the entitlement expires within the next
// seven days. False when no expiry is set, when it already passed, or when
// it is further out than the window.
func (e Entitlement) IsExpiringSoon(now time.Time) bool {
	if e.ExpiresAt == nil {
		return false
	}
	return e.ExpiresAt.After(now) && e.ExpiresAt.Before(now.Add(ExpiringSoonWindow))
}

// SubscriptionStatus represents the current billing state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive       SubscriptionStatus = "active"
	SubscriptionCancelled    SubscriptionStatus = "cancelled"
	SubscriptionExpired      SubscriptionStatus = "expired"
	SubscriptionBillingRetry SubscriptionStatus = "billing_retry"
	SubscriptionGracePeriod  SubscriptionStatus = "grace_period"
	SubscriptionPaused       SubscriptionStatus = "paused"
	SubscriptionPending      SubscriptionStatus = "pending"
)

// GrantsAccess reports whether the status still grants access to the
// subscription's content. Only active and grace_period do; the mapping is
// fixed and must not be made configurable.
func (s SubscriptionStatus) GrantsAccess() bool {
	return s == SubscriptionActive || s == SubscriptionGracePeriod
}

// SubscriptionInfo carries per-subscription detail from the backend.
type SubscriptionInfo struct {
	ProductID    string             `json:"productId"`
	Status       SubscriptionStatus `json:"status"`
	Store        Store              `json:"store,omitempty"`
	PurchaseDate *time.Time         `json:"purchaseDate,omitempty"`
	ExpiresDate  *time.Time         `json:"expiresDate,omitempty"`
	WillRenew    bool               `json:"willRenew"`
	Price        float64            `json:"price,omitempty"`
	Currency     string             `json:"currency,omitempty"`
}

// CustomerSnapshot is an immutable view of a customer's entitlement state as
// of a point in time. Snapshots are replaced as a whole unit, never patched.
type CustomerSnapshot struct {
	UserID                 string                 `json:"userId"`
	OriginalUserID         string                 `json:"originalUserId,omitempty"`
	Entitlements           map[string]Entitlement `json:"entitlements"`
	ActiveSubscriptionIDs  []string               `json:"activeSubscriptionIds"`
	AllPurchasedProductIDs []string               `json:"allPurchasedProductIds"`
	LatestExpiration       *time.Time             `json:"latestExpiration,omitempty"`
	ManagementURL          string                 `json:"managementUrl,omitempty"`
	FirstSeen              *time.Time             `json:"firstSeen,omitempty"`
	LastSeen               *time.Time             `json:"lastSeen,omitempty"`
	SubscriptionDetails    []SubscriptionInfo     `json:"subscriptionDetails,omitempty"`
}

// EmptySnapshot returns a well-formed snapshot for a user the backend does
// not know yet. A not-yet-known user is a valid state, not a failure.
func EmptySnapshot(userID string) *CustomerSnapshot {
	return &CustomerSnapshot{
		UserID:                 userID,
		Entitlements:           map[string]Entitlement{},
		ActiveSubscriptionIDs:  []string{},
		AllPurchasedProductIDs: []string{},
	}
}

// HasActiveSubscription reports whether any subscription currently grants
// access.
func (s *CustomerSnapshot) HasActiveSubscription() bool {
	return len(s.ActiveSubscriptionIDs) > 0
}

// IsEntitled reports whether the given entitlement is currently active.
// Absent keys are not entitled.
func (s *CustomerSnapshot) IsEntitled(productID string) bool {
	e, ok := s.Entitlements[productID]
	return ok && e.IsActive
}

// HasAnyEntitlement reports whether at least one entitlement is active. The
// backend may populate entitlements and active subscription ids
// independently, so this does not consult ActiveSubscriptionIDs.
func (s *CustomerSnapshot) HasAnyEntitlement() bool {
	for _, e := range s.Entitlements {
		if e.IsActive {
			return true
		}
	}
	return false
}

// SubscriptionManagementURL returns the URL where the customer can manage
// their subscription. Fails with ErrNoActiveSubscription when nothing is
// active or the backend supplied no URL.
func (s *CustomerSnapshot) SubscriptionManagementURL() (string, error) {
	if !s.HasActiveSubscription() || s.ManagementURL == "" {
		return "", ErrNoActiveSubscription
	}
	return s.ManagementURL, nil
}

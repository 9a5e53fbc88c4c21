package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/felixgeelhaar/entitle/internal/entitlement/domain"
	"github.com/felixgeelhaar/entitle/internal/entitlement/infrastructure/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *remote.Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return remote.NewClient(remote.Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
	}, nil)
}

func TestClient_FetchSnapshot_OK(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/customers/user-1", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"customerInfo": map[string]any{
				"userId": "user-1",
				"entitlements": map[string]any{
					"premium": map[string]any{"isActive": true, "productId": "premium_monthly"},
				},
				"activeSubscriptionIds":  []string{"premium_monthly"},
				"allPurchasedProductIds": []string{"premium_monthly"},
			},
		})
	})

	snapshot, err := client.FetchSnapshot(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", snapshot.UserID)
	assert.True(t, snapshot.IsEntitled("premium"))
	assert.True(t, snapshot.HasActiveSubscription())
}

func TestClient_FetchSnapshot_NotFoundYieldsEmptySnapshot(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	snapshot, err := client.FetchSnapshot(context.Background(), "new-user")
	require.NoError(t, err)
	assert.Equal(t, "new-user", snapshot.UserID)
	assert.Empty(t, snapshot.Entitlements)
	assert.Empty(t, snapshot.ActiveSubscriptionIDs)
	assert.Empty(t, snapshot.AllPurchasedProductIDs)
}

func TestClient_FetchSnapshot_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.FetchSnapshot(context.Background(), "user-1")

	var serverErr *domain.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusInternalServerError, serverErr.StatusCode)
}

func TestClient_FetchSnapshot_MalformedPayloadIsNetworkError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})

	_, err := client.FetchSnapshot(context.Background(), "user-1")
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestClient_FetchSnapshot_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // refuse connections

	client := remote.NewClient(remote.Config{APIKey: "k", BaseURL: server.URL}, nil)

	_, err := client.FetchSnapshot(context.Background(), "user-1")
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

func TestClient_VerifyTransaction_OK(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/receipts/verify", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body struct {
			TransactionID string `json:"transactionId"`
			AppUserID     string `json:"appUserId"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "txn-7", body.TransactionID)
		assert.Equal(t, "user-1", body.AppUserID)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"customerInfo": map[string]any{
				"userId":                 "user-1",
				"entitlements":           map[string]any{},
				"activeSubscriptionIds":  []string{},
				"allPurchasedProductIds": []string{"premium_monthly"},
			},
			"transaction": map[string]any{"id": "txn-7", "productId": "premium_monthly"},
		})
	})

	snapshot, err := client.VerifyTransaction(context.Background(), "txn-7", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", snapshot.UserID)
	assert.Contains(t, snapshot.AllPurchasedProductIDs, "premium_monthly")
}

func TestClient_VerifyTransaction_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad receipt", http.StatusBadRequest)
			},
		},
		{
			name: "success false",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.VerifyTransaction(context.Background(), "txn-1", "user-1")
			assert.ErrorIs(t, err, domain.ErrVerificationFailed)
		})
	}
}

func TestClient_BreakerOpensAfterConsecutiveTransportFailures(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := remote.NewClient(remote.Config{
		APIKey:         "k",
		BaseURL:        server.URL,
		BreakerEnabled: true,
	}, nil)

	ctx := context.Background()
	for i := 0; i < 6; i++ {
		_, err := client.FetchSnapshot(ctx, "user-1")
		require.Error(t, err)
	}

	// Breaker is open now; failures still surface as network errors.
	_, err := client.FetchSnapshot(ctx, "user-1")
	assert.ErrorIs(t, err, domain.ErrNetwork)
}

package eventbus_test

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/entitle/internal/shared/infrastructure/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInProcessBus_DeliversToAllSubscribers(t *testing.T) {
	bus := eventbus.NewInProcessBus(nil)

	var got []string
	bus.Subscribe(func(ctx context.Context, routingKey string, payload []byte) {
		got = append(got, "first:"+routingKey)
	})
	bus.Subscribe(func(ctx context.Context, routingKey string, payload []byte) {
		got = append(got, "second:"+string(payload))
	})

	err := bus.Publish(context.Background(), "entitle.customer.changed", []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first:entitle.customer.changed", "second:payload"}, got)
}

func TestInProcessBus_PanickingSubscriberDoesNotStopDispatch(t *testing.T) {
	bus := eventbus.NewInProcessBus(nil)

	bus.Subscribe(func(ctx context.Context, routingKey string, payload []byte) {
		panic("boom")
	})

	delivered := false
	bus.Subscribe(func(ctx context.Context, routingKey string, payload []byte) {
		delivered = true
	})

	err := bus.Publish(context.Background(), "entitle.customer.changed", nil)
	require.NoError(t, err)
	assert.True(t, delivered)
}

func TestNoopPublisher(t *testing.T) {
	var pub eventbus.NoopPublisher
	assert.NoError(t, pub.Publish(context.Background(), "any", nil))
	assert.NoError(t, pub.Close())
}

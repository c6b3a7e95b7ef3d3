package infrastructure

import (
	"context"
	"errors"
	"testing"

	"tokenengine/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingPublisher records every event it is asked to publish
type capturingPublisher struct {
	published []events.Event
	err       error
}

func (c *capturingPublisher) Publish(event events.Event) error {
	if c.err != nil {
		return c.err
	}
	c.published = append(c.published, event)
	return nil
}

func TestTransactionalPublisher_FlushPublishesInOrder(t *testing.T) {
	t.Parallel()

	capture := &capturingPublisher{}
	publisher := NewTransactionalPublisher(capture)

	require.NoError(t, publisher.Publish(events.AccountCreatedEvent{UserID: "user-1"}))
	require.NoError(t, publisher.Publish(events.BalanceChangeEvent{UserID: "user-1", ChangeAmount: -5}))

	assert.Empty(t, capture.published, "nothing publishes before flush")

	require.NoError(t, publisher.Flush(context.Background()))

	require.Len(t, capture.published, 2)
	assert.Equal(t, events.EventTypeAccountCreated, capture.published[0].Type())
	assert.Equal(t, events.EventTypeBalanceChange, capture.published[1].Type())

	// Second flush has nothing left
	require.NoError(t, publisher.Flush(context.Background()))
	assert.Len(t, capture.published, 2)
}

func TestTransactionalPublisher_DiscardDropsEverything(t *testing.T) {
	t.Parallel()

	capture := &capturingPublisher{}
	publisher := NewTransactionalPublisher(capture)

	require.NoError(t, publisher.Publish(events.PrizeGrantedEvent{UserID: "user-1", Amount: 500}))
	publisher.Discard()

	require.NoError(t, publisher.Flush(context.Background()))
	assert.Empty(t, capture.published)
}

func TestTransactionalPublisher_FlushContinuesPastFailures(t *testing.T) {
	t.Parallel()

	capture := &capturingPublisher{err: errors.New("broker down")}
	publisher := NewTransactionalPublisher(capture)

	require.NoError(t, publisher.Publish(events.BalanceChangeEvent{UserID: "user-1"}))

	// Flush reports success even when the downstream publisher fails; the
	// transaction already committed and must not be failed retroactively
	assert.NoError(t, publisher.Flush(context.Background()))
}

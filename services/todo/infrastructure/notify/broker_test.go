package notify

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/todos/services/todo/domain/models"
)

func receive(t *testing.T, ch <-chan models.Change) models.Change {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return c
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change")
		return models.Change{}
	}
}

func TestBroker_DeliversOnlyToOwner(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewBroker()
	alice, bob := uuid.New(), uuid.New()

	aliceCh, err := b.Watch(ctx, alice)
	require.NoError(t, err)
	bobCh, err := b.Watch(ctx, bob)
	require.NoError(t, err)

	todo := models.NewTodo(alice, "Buy milk")
	b.Publish(models.NewChange(models.ChangeCreated, alice, todo.ID, todo))

	got := receive(t, aliceCh)
	assert.Equal(t, models.ChangeCreated, got.Type)
	assert.Equal(t, todo.ID, got.TodoID)

	select {
	case c := <-bobCh:
		t.Fatalf("bob received alice's change: %+v", c)
	default:
	}
}

func TestBroker_ClosesOnContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := NewBroker()

	ch, err := b.Watch(ctx, uuid.New())
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "expected closed channel")
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestBroker_PublishNeverBlocks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewBroker()
	owner := uuid.New()
	_, err := b.Watch(ctx, owner)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for range subscriberBuffer * 3 {
			b.Publish(models.NewChange(models.ChangeDeleted, owner, uuid.New(), nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
}

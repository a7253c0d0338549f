package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Sanalemba991/digiallink-sa/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeOf(t *testing.T) {
	assert.Equal(t, events.TypeContactSubmitted, events.TypeOf(events.ContactSubmitted{}))
	assert.Equal(t, events.TypeApplicationSubmitted, events.TypeOf(events.ApplicationSubmitted{}))
	assert.Equal(t, "", events.TypeOf(map[string]string{"a": "b"}))
}

func TestNop(t *testing.T) {
	var p events.Producer = events.Nop{}
	assert.NoError(t, p.SendMessage(context.Background(), "id", events.ContactSubmitted{}))
	assert.NoError(t, p.Close())
}

func TestRecorder(t *testing.T) {
	rec := &events.Recorder{}
	ctx := context.Background()

	require.NoError(t, rec.SendMessage(ctx, "c1", events.ContactSubmitted{ID: "c1"}))
	rec.Err = errors.New("broker down")
	assert.Error(t, rec.SendMessage(ctx, "c2", events.ContactSubmitted{ID: "c2"}))

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "c1", msgs[0].Key)

	require.NoError(t, rec.Close())
	assert.True(t, rec.Closed())
}

func TestInstrument(t *testing.T) {
	rec := &events.Recorder{}
	p := events.Instrument(rec, "nats", nil)

	require.NoError(t, p.SendMessage(context.Background(), "a1", events.ApplicationSubmitted{ID: "a1"}))
	require.Len(t, rec.Messages(), 1)

	rec.Err = errors.New("timeout")
	assert.Error(t, p.SendMessage(context.Background(), "a2", events.ApplicationSubmitted{ID: "a2"}))

	require.NoError(t, p.Close())
	assert.True(t, rec.Closed())
}

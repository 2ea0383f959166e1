package kafka

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/logging"
	"github.com/herbwise/fangmatch/pkg/errors"
)

type fakeReader struct {
	messages []segkafka.Message
	pos      int
}

func (r *fakeReader) ReadMessage(ctx context.Context) (segkafka.Message, error) {
	if err := ctx.Err(); err != nil {
		return segkafka.Message{}, err
	}
	if r.pos >= len(r.messages) {
		return segkafka.Message{}, io.EOF
	}
	msg := r.messages[r.pos]
	r.pos++
	return msg, nil
}

func (r *fakeReader) Close() error { return nil }

func mustMessage(t *testing.T, event FormulaChangedEvent) segkafka.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return segkafka.Message{Topic: TopicFormulaChanged, Value: payload}
}

func TestConsumer_DispatchesEvents(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{messages: []segkafka.Message{
		mustMessage(t, FormulaChangedEvent{Type: ChangeCreated, FormulaID: "f-1"}),
		{Topic: TopicFormulaChanged, Value: []byte("not json")},
		mustMessage(t, FormulaChangedEvent{Type: ChangeDeleted, FormulaID: "f-2"}),
	}}

	var seen []FormulaChangedEvent
	handler := func(_ context.Context, e FormulaChangedEvent) error {
		seen = append(seen, e)
		if e.Type == ChangeDeleted {
			// Handler errors must not stop the loop; the loop ends at EOF.
			return errors.New(errors.ErrCodeInternal, "handler hiccup")
		}
		return nil
	}

	c := NewConsumerWithReader(reader, handler, logging.NewNopLogger())
	err := c.Run(context.Background())
	assert.ErrorIs(t, err, io.EOF)

	require.Len(t, seen, 2, "undecodable message is skipped")
	assert.Equal(t, "f-1", seen[0].FormulaID)
	assert.Equal(t, "f-2", seen[1].FormulaID)
}

func TestConsumer_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewConsumerWithReader(&fakeReader{}, func(context.Context, FormulaChangedEvent) error {
		return nil
	}, logging.NewNopLogger())

	assert.ErrorIs(t, c.Run(ctx), context.Canceled)
}

package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Sanalemba991/digiallink-sa/internal/events"
	"github.com/Sanalemba991/digiallink-sa/internal/kafka"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducer_SendMessage(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)

	event := events.ApplicationSubmitted{
		ID:        "a1",
		FullName:  "Jane Doe",
		Email:     "jane@example.com",
		JobTitle:  "Backend Engineer",
		JobSlug:   "backend-engineer",
		HasResume: true,
	}

	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "a1" {
			return errors.New("unexpected key " + string(key))
		}
		if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != events.TypeApplicationSubmitted {
			return errors.New("missing event-type header")
		}

		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var got events.ApplicationSubmitted
		if err := json.Unmarshal(value, &got); err != nil {
			return err
		}
		if got.JobSlug != "backend-engineer" || !got.HasResume {
			return errors.New("unexpected payload")
		}
		return nil
	})

	producer := kafka.NewProducerWith(mock, "site.submissions", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, producer.SendMessage(context.Background(), event.ID, event))
	require.NoError(t, producer.Close())
}

func TestProducer_SendMessageFailure(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	producer := kafka.NewProducerWith(mock, "site.submissions", slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := producer.SendMessage(context.Background(), "c1", events.ContactSubmitted{ID: "c1"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, producer.Close())
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Austinpowers7/storehive-backend/internal/entity"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func TestKafkaPublisherWritesKeyedOrder(t *testing.T) {
	writer := &fakeWriter{}
	publisher := &KafkaPublisher{writer: writer}
	order := &entity.Order{ID: "o-1", StoreID: testStore1, Total: decimal.RequireFromString("12.50")}

	require.NoError(t, publisher.PublishOrder(context.Background(), EventOrderConfirmed, order))

	require.Len(t, writer.msgs, 1)
	assert.Equal(t, "order-confirmed-o-1", string(writer.msgs[0].Key))
	var decoded entity.Order
	require.NoError(t, json.Unmarshal(writer.msgs[0].Value, &decoded))
	assert.Equal(t, "o-1", decoded.ID)
	assert.True(t, decoded.Total.Equal(order.Total))
}

func TestKafkaPublisherReturnsWriteError(t *testing.T) {
	publisher := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}}

	err := publisher.PublishOrder(context.Background(), EventOrderCreated, &entity.Order{ID: "o-1"})

	assert.EqualError(t, err, "broker down")
}

func TestQRDataURL(t *testing.T) {
	url, err := qrDataURL(newSessionCode())

	require.NoError(t, err)
	assert.Contains(t, url, "data:image/png;base64,")
}

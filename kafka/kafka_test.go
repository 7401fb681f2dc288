package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func TestPublishStockMoved(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicStockMovements {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "piece_4" {
			return errors.New("unexpected key " + string(key))
		}
		raw, _ := msg.Value.Encode()
		var event StockMovedEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return err
		}
		if event.EventType != EventTypeStockMoved || event.EventID == "" {
			return errors.New("event metadata not set")
		}
		if event.NewQuantity != 7 {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := newPublisher(producer, nil)
	err := p.PublishStockMoved(context.Background(), StockMovedEvent{
		Kind:        "piece",
		ItemID:      4,
		Operation:   "ADD",
		Quantity:    2,
		OldQuantity: 5,
		NewQuantity: 7,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestPublishTaskEventFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := newPublisher(producer, nil)
	err := p.PublishTaskEvent(context.Background(), TaskEvent{TaskID: 1, ProductionID: 2, Transition: "STARTED"})
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected broker error, got %v", err)
	}
	p.Close()
}

func TestDispatch(t *testing.T) {
	c := newConsumer("group", []string{TopicStockMovements})

	var got StockMovedEvent
	c.RegisterHandler(EventTypeStockMoved, func(_ context.Context, event StockMovedEvent) error {
		got = event
		return nil
	})

	raw, _ := json.Marshal(StockMovedEvent{Kind: "kit", ItemID: 9, NewQuantity: 1, AlertThreshold: 2})
	if err := c.Dispatch(context.Background(), EventTypeStockMoved, raw); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got.ItemID != 9 || got.Kind != "kit" {
		t.Errorf("handler received %+v", got)
	}

	if err := c.Dispatch(context.Background(), "unknown", raw); err == nil {
		t.Error("expected error for unregistered event type")
	}
	if err := c.Dispatch(context.Background(), EventTypeStockMoved, []byte("{")); err == nil {
		t.Error("expected error for malformed payload")
	}
}

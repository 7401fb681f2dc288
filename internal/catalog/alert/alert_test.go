package alert

import (
	"context"
	"testing"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/kafka"
)

func TestChecker(t *testing.T) {
	var raised []uint
	c := NewChecker()
	c.raised = func(e kafka.StockMovedEvent) { raised = append(raised, e.ItemID) }

	events := []kafka.StockMovedEvent{
		{ItemID: 1, Kind: "piece", Operation: "REMOVE", NewQuantity: 2, AlertThreshold: 2},
		{ItemID: 2, Kind: "piece", Operation: "REMOVE", NewQuantity: 3, AlertThreshold: 2},
		{ItemID: 3, Kind: "kit", Operation: "ADD", NewQuantity: 1, AlertThreshold: 5},
		{ItemID: 4, Kind: "kit", Operation: "REMOVE", NewQuantity: 0, AlertThreshold: 0},
	}
	for _, e := range events {
		if err := c.PublishStockMoved(context.Background(), e); err != nil {
			t.Fatal(err)
		}
	}

	if len(raised) != 2 || raised[0] != 1 || raised[1] != 4 {
		t.Errorf("raised alerts for %v, want [1 4]", raised)
	}
}

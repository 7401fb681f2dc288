package domain

import (
	"encoding/json"
	"testing"

	catalog "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
)

func TestBuildItems(t *testing.T) {
	three := 3
	items, err := BuildItems(catalog.KindPiece, []BOMLine{{ItemID: 1}, {ItemID: 2, Quantity: &three}})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].Quantity != 1 || items[1].Quantity != 3 {
		t.Fatalf("unexpected items %+v", items)
	}
	if items[0].Kind != catalog.KindPiece {
		t.Errorf("kind = %s", items[0].Kind)
	}

	empty, err := BuildItems(catalog.KindPiece, []BOMLine{})
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty list: %v, %v", empty, err)
	}

	zero := 0
	if _, err := BuildItems(catalog.KindPiece, []BOMLine{{ItemID: 1, Quantity: &zero}}); !apperror.IsInvalid(err) {
		t.Errorf("zero quantity: got %v", err)
	}
	if _, err := BuildItems(catalog.KindPiece, []BOMLine{{ItemID: 1}, {ItemID: 1}}); !apperror.IsInvalid(err) {
		t.Errorf("duplicate: got %v", err)
	}
}

func TestOptionalID(t *testing.T) {
	var req struct {
		BorneID OptionalID `json:"borneId"`
	}

	if err := json.Unmarshal([]byte(`{}`), &req); err != nil {
		t.Fatal(err)
	}
	if req.BorneID.Set {
		t.Error("absent field must not be set")
	}

	if err := json.Unmarshal([]byte(`{"borneId": null}`), &req); err != nil {
		t.Fatal(err)
	}
	if !req.BorneID.Set || req.BorneID.Value != nil {
		t.Errorf("explicit null = %+v", req.BorneID)
	}

	if err := json.Unmarshal([]byte(`{"borneId": 4}`), &req); err != nil {
		t.Fatal(err)
	}
	if !req.BorneID.Set || req.BorneID.Value == nil || *req.BorneID.Value != 4 {
		t.Errorf("value = %+v", req.BorneID)
	}
}

func TestSameID(t *testing.T) {
	a, b := uint(1), uint(1)
	c := uint(2)
	if !SameID(nil, nil) || !SameID(&a, &b) {
		t.Error("expected equal ids")
	}
	if SameID(&a, nil) || SameID(&a, &c) {
		t.Error("expected different ids")
	}
}

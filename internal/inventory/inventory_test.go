package inventory

import (
	"errors"
	"strings"
	"testing"
)

func TestNewScannedCodeBounds(t *testing.T) {
	if _, err := NewScannedCode("   ", TagManual); !errors.Is(err, ErrEmptyCode) {
		t.Fatalf("expected ErrEmptyCode, got %v", err)
	}
	if _, err := NewScannedCode(strings.Repeat("9", MaxCodeLength+1), TagBarcode); !errors.Is(err, ErrCodeTooLong) {
		t.Fatalf("expected ErrCodeTooLong, got %v", err)
	}
	code, err := NewScannedCode(" "+strings.Repeat("7", MaxCodeLength)+"\n", TagQR)
	if err != nil {
		t.Fatalf("max length code rejected: %v", err)
	}
	if len(code.Value) != MaxCodeLength || code.Tag != TagQR {
		t.Fatalf("unexpected code %+v", code)
	}
}

func TestParseWorkflowKind(t *testing.T) {
	for _, kind := range WorkflowKinds {
		parsed, err := ParseWorkflowKind(strings.ToUpper(kind.String()))
		if err != nil {
			t.Fatalf("parse %s: %v", kind, err)
		}
		if parsed != kind {
			t.Fatalf("parse %s = %s", kind, parsed)
		}
	}
	if _, err := ParseWorkflowKind("restock"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	if WorkflowKind(0).Valid() {
		t.Fatalf("zero kind must be invalid")
	}
}

func TestShelfLifeEnumeration(t *testing.T) {
	lives := ShelfLives()
	if len(lives) != 7 {
		t.Fatalf("expected 7 shelf-life classes, got %d", len(lives))
	}
	if lives[5].String() != "1 AÑO" {
		t.Fatalf("unexpected label %q", lives[5].String())
	}
	if ShelfLife(7).Valid() || ShelfLife(-1).Valid() {
		t.Fatalf("out of range shelf life must be invalid")
	}
}

func TestBatchLabel(t *testing.T) {
	warehouses := []Warehouse{{ID: 1, Name: "Central", Address: "Av. Siempre Viva 742"}}
	got := BatchLabel(Batch{ID: 3, WarehouseID: 1, EntryDate: "2024-05-01", CurrentStock: 12}, warehouses)
	if got != "2024-05-01 - Av. Siempre Viva 742 - (12)" {
		t.Fatalf("unexpected label %q", got)
	}
	if warehouses[0].Label() != "Central - Av. Siempre Viva 742" {
		t.Fatalf("unexpected warehouse label %q", warehouses[0].Label())
	}
}

package service

import (
	"testing"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
)

// TestDiffStampingDataOnlyChangedKeys ensures identical values are not reported as changes
func TestDiffStampingDataOnlyChangedKeys(t *testing.T) {
	current := entity.StringMap{"pressure": "120", "temperature": "210", "cycle_time": "32"}
	incoming := entity.StringMap{"pressure": "120", "temperature": "215"}

	changed := DiffStampingData(current, incoming)

	if len(changed) != 1 {
		t.Fatalf("expected 1 changed key, got %d: %v", len(changed), changed)
	}
	if changed["temperature"] != "215" {
		t.Fatalf("expected temperature=215, got %v", changed["temperature"])
	}
}

// TestDiffStampingDataMissingKeyIsNotRemoval verifies absent keys are left untouched
func TestDiffStampingDataMissingKeyIsNotRemoval(t *testing.T) {
	current := entity.StringMap{"pressure": "120", "temperature": "210"}
	incoming := entity.StringMap{"pressure": "120"}

	changed := DiffStampingData(current, incoming)
	if len(changed) != 0 {
		t.Fatalf("expected no changes when incoming matches, got %v", changed)
	}
}

// TestDiffStampingDataNewKey verifies keys absent from current count as changes
func TestDiffStampingDataNewKey(t *testing.T) {
	current := entity.StringMap{"pressure": "120"}
	incoming := entity.StringMap{"cooling_time": "8"}

	changed := DiffStampingData(current, incoming)
	if changed["cooling_time"] != "8" {
		t.Fatalf("expected cooling_time=8 in diff, got %v", changed)
	}
}

// TestDiffStampingDataEmptyCurrent covers first-time parameter recording
func TestDiffStampingDataEmptyCurrent(t *testing.T) {
	incoming := entity.StringMap{"pressure": "100", "temperature": "200"}

	changed := DiffStampingData(nil, incoming)
	if len(changed) != 2 {
		t.Fatalf("expected all incoming keys as changes, got %v", changed)
	}
}

// TestValidateCustomFields rejects blank keys and values
func TestValidateCustomFields(t *testing.T) {
	if err := validateCustomFields(entity.StringMap{"owner": "workshop-a"}); err != nil {
		t.Fatalf("expected valid fields to pass, got %v", err)
	}
	if err := validateCustomFields(entity.StringMap{"": "x"}); err == nil {
		t.Fatal("expected blank key to fail")
	}
	if err := validateCustomFields(entity.StringMap{"owner": "  "}); err == nil {
		t.Fatal("expected blank value to fail")
	}
	if err := validateCustomFields(nil); err != nil {
		t.Fatalf("expected nil map to pass, got %v", err)
	}
}

package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseRunID tests run ID parsing
func TestParseRunID(t *testing.T) {
	valid := NewRunID().String()

	tests := []struct {
		input    string
		expected RunID
		hasError bool
	}{
		{valid, RunID(valid), false},
		{"  " + valid + " ", RunID(valid), false},
		{"run-123", "", true},
		{"", "", true},
	}

	for _, test := range tests {
		result, err := ParseRunID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestParseGroupingIDs tests study and finding key parsing
func TestParseGroupingIDs(t *testing.T) {
	if _, err := ParseStudyID("   "); err == nil {
		t.Error("Expected error for blank study ID")
	}
	if _, err := ParseFindingID(""); err == nil {
		t.Error("Expected error for empty finding ID")
	}

	study, err := ParseStudyID(" study_003 ")
	if err != nil || study != StudyID("study_003") {
		t.Errorf("Expected study_003, got %q (err=%v)", study, err)
	}
}

// TestHashShort tests hash truncation
func TestHashShort(t *testing.T) {
	h := NewHash([]byte("records"))
	if len(h) != 64 {
		t.Fatalf("Expected 64 hex chars, got %d", len(h))
	}
	if h.Short() != string(h)[:12] {
		t.Errorf("Expected 12-char prefix, got %s", h.Short())
	}
	if NewHash([]byte("records")) != h {
		t.Error("Expected hashing to be deterministic")
	}
}

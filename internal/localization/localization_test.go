package localization

import (
	"strings"
	"testing"
)

func TestGetReplacesPlaceholders(t *testing.T) {
	s, err := NewService()
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	got := s.Get("sweep.accounts_disabled", map[string]interface{}{"count": 7})
	if !strings.Contains(got, "7") {
		t.Errorf("expected count substituted, got %q", got)
	}
	if strings.Contains(got, "{{") {
		t.Errorf("unresolved placeholder in %q", got)
	}
}

func TestGetUnknownKeyFallsBackToKey(t *testing.T) {
	s, err := NewService()
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if got := s.Get("sweep.no_such_key", nil); got != "sweep.no_such_key" {
		t.Errorf("expected key echoed back, got %q", got)
	}
}

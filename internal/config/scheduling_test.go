package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSchedulingPolicy_Defaults(t *testing.T) {
	policy, err := LoadSchedulingPolicy("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if policy.BusinessDays != 3 || policy.SlotsPerDay != 6 || policy.MaxSlots != 6 {
		t.Fatalf("unexpected defaults %+v", policy)
	}
	if policy.SlotLength != 30*time.Minute {
		t.Fatalf("expected 30m slots, got %s", policy.SlotLength)
	}
	if policy.DayStartUTC != 10*time.Hour {
		t.Fatalf("expected a 10:00 day start, got %s", policy.DayStartUTC)
	}
}

func TestLoadSchedulingPolicy_FileOverridesSubset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := "business_days: 5\nday_start: \"09:30\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write policy file: %v", err)
	}

	policy, err := LoadSchedulingPolicy(path)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if policy.BusinessDays != 5 {
		t.Fatalf("expected 5 business days, got %d", policy.BusinessDays)
	}
	if policy.DayStartUTC != 9*time.Hour+30*time.Minute {
		t.Fatalf("expected a 09:30 day start, got %s", policy.DayStartUTC)
	}
	// Untouched fields keep their defaults.
	if policy.SlotsPerDay != 6 || policy.SlotLength != 30*time.Minute {
		t.Fatalf("unexpected policy %+v", policy)
	}
}

func TestLoadSchedulingPolicy_BadDayStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte("day_start: \"25:99\"\n"), 0o644); err != nil {
		t.Fatalf("write policy file: %v", err)
	}
	if _, err := LoadSchedulingPolicy(path); err == nil {
		t.Fatal("expected an error for a bad clock value")
	}
}

func TestLoadSchedulingPolicy_MissingFile(t *testing.T) {
	if _, err := LoadSchedulingPolicy(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

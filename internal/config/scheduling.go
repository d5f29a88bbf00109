package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SchedulingPolicy is the slot-generation tuning. It ships with
// compiled-in defaults and may be overridden by a YAML file so each
// deployment can match its own working-hours band.
type SchedulingPolicy struct {
	// BusinessDays is how many weekdays forward the scan walks from
	// the candidate-chosen first day.
	BusinessDays int `yaml:"business_days"`
	// SlotsPerDay caps the candidate windows enumerated per day.
	SlotsPerDay int `yaml:"slots_per_day"`
	// MaxSlots caps the total proposal list.
	MaxSlots    int           `yaml:"max_slots"`
	SlotLength  time.Duration `yaml:"slot_length"`
	DayStart    string        `yaml:"day_start"`
	DayStartUTC time.Duration `yaml:"-"`
}

func DefaultSchedulingPolicy() SchedulingPolicy {
	return SchedulingPolicy{
		BusinessDays: 3,
		SlotsPerDay:  6,
		MaxSlots:     6,
		SlotLength:   30 * time.Minute,
		DayStart:     "10:00",
		DayStartUTC:  10 * time.Hour,
	}
}

// LoadSchedulingPolicy reads the policy file at path, falling back to
// defaults when path is empty. Unset fields keep their defaults.
func LoadSchedulingPolicy(path string) (SchedulingPolicy, error) {
	policy := DefaultSchedulingPolicy()
	if path == "" {
		return policy, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("read scheduling policy: %w", err)
	}
	var loaded SchedulingPolicy
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		return policy, fmt.Errorf("parse scheduling policy: %w", err)
	}
	if loaded.BusinessDays > 0 {
		policy.BusinessDays = loaded.BusinessDays
	}
	if loaded.SlotsPerDay > 0 {
		policy.SlotsPerDay = loaded.SlotsPerDay
	}
	if loaded.MaxSlots > 0 {
		policy.MaxSlots = loaded.MaxSlots
	}
	if loaded.SlotLength > 0 {
		policy.SlotLength = loaded.SlotLength
	}
	if loaded.DayStart != "" {
		policy.DayStart = loaded.DayStart
	}
	start, err := parseClock(policy.DayStart)
	if err != nil {
		return policy, err
	}
	policy.DayStartUTC = start
	return policy, nil
}

func parseClock(value string) (time.Duration, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("parse day_start %q: %w", value, err)
	}
	return time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute, nil
}

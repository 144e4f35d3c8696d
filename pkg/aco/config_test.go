package aco

import (
	"errors"
	"testing"
)

func TestConfigValidateRejectsNonPositiveAnts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AntsPerIteration = 0
	if err := cfg.Validate(); !errors.Is(err, ErrConfigurationInvalid) {
		t.Fatalf("expected ErrConfigurationInvalid, got %v", err)
	}
}

func TestConfigValidateRejectsInvertedPheromoneRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinPheromone = 9
	cfg.MaxPheromone = 1
	if err := cfg.Validate(); !errors.Is(err, ErrConfigurationInvalid) {
		t.Fatalf("expected ErrConfigurationInvalid for inverted pheromone range, got %v", err)
	}
}

func TestParseDualCostFn(t *testing.T) {
	cases := map[string]DualCostFn{
		"OFF":                  DualCostOff,
		"":                     DualCostOff,
		"GLOBAL_ONLY":          DualCostGlobalOnly,
		"GLOBAL_AND_TIGHTEN":   DualCostGlobalAndTighten,
		"GLOBAL_AND_ITERATION": DualCostGlobalAndIteration,
	}
	for input, want := range cases {
		got, err := ParseDualCostFn(input)
		if err != nil {
			t.Fatalf("ParseDualCostFn(%q): unexpected error %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseDualCostFn(%q) = %v, want %v", input, got, want)
		}
	}
	if _, err := ParseDualCostFn("BOGUS"); err == nil {
		t.Fatalf("expected error for unknown dual cost function name")
	}
}

func TestParseSpillCostFn(t *testing.T) {
	cases := map[string]SpillCostFn{
		"NONE":            SpillCostFnNone,
		"":                SpillCostFnNone,
		"PEAK_PRESSURE":   SpillCostFnPeakPressure,
		"LIVE_RANGE_SPAN": SpillCostFnLiveRangeSpan,
	}
	for input, want := range cases {
		got, err := ParseSpillCostFn(input)
		if err != nil {
			t.Fatalf("ParseSpillCostFn(%q): unexpected error %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseSpillCostFn(%q) = %v, want %v", input, got, want)
		}
	}
	if _, err := ParseSpillCostFn("BOGUS"); err == nil {
		t.Fatalf("expected error for unknown spill cost function name")
	}
}

func TestShouldReplaceScheduleFirstScheduleAlwaysWins(t *testing.T) {
	cfg := DefaultConfig()
	s := &Summary{ExecCost: 100, NormSpillCost: 5}
	if !shouldReplaceSchedule(nil, s, true, cfg, false) {
		t.Fatalf("a nil incumbent must always be replaced")
	}
}

func TestShouldReplaceScheduleTieRequiresDualCostFn(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DualCostFunction = DualCostOff
	old := &Summary{ExecCost: 10, NormSpillCost: 2, ExtraSpillCost: 5}
	tie := &Summary{ExecCost: 10, NormSpillCost: 2, ExtraSpillCost: 3}
	if shouldReplaceSchedule(old, tie, true, cfg, false) {
		t.Fatalf("an exact tie must not replace the incumbent when DualCostFunction is OFF")
	}

	cfg.DualCostFunction = DualCostGlobalAndIteration
	if !shouldReplaceSchedule(old, tie, false, cfg, false) {
		t.Fatalf("GLOBAL_AND_ITERATION must let a tie with a lower extra spill cost replace even the iteration-best comparison")
	}

	equalExtra := &Summary{ExecCost: 10, NormSpillCost: 2, ExtraSpillCost: 5}
	if shouldReplaceSchedule(old, equalExtra, false, cfg, false) {
		t.Fatalf("a tie with equal extra spill cost must not replace the incumbent")
	}
}

func TestShouldReplaceScheduleSecondPassNeverRegressesSpillCost(t *testing.T) {
	cfg := DefaultConfig()
	old := &Summary{ExecCost: 10, NormSpillCost: 2}
	worseSpillBetterExec := &Summary{ExecCost: 5, NormSpillCost: 3}
	if shouldReplaceSchedule(old, worseSpillBetterExec, true, cfg, false) {
		t.Fatalf("a faster schedule that regresses spill cost must not replace the incumbent")
	}
	betterBoth := &Summary{ExecCost: 5, NormSpillCost: 2}
	if !shouldReplaceSchedule(old, betterBoth, true, cfg, false) {
		t.Fatalf("a schedule that is strictly better on exec cost without regressing spill cost must replace the incumbent")
	}
}

package app

import (
	"fmt"
	"strconv"
	"strings"

	"brooklyn_demand/internal/domain"
)

// Population increase slider bounds, in percent.
const (
	MinScenario     = 0
	MaxScenario     = 25
	ScenarioStep    = 5
	DefaultScenario = 10
)

// ResolveDatasets names the warehouse tables for a population increase.
// It does not check that they exist.
func ResolveDatasets(pct int) domain.Datasets {
	return domain.Datasets{
		ScoreTable:  fmt.Sprintf("DEMAND_SCORES_%dPCT", pct),
		DetailTable: fmt.Sprintf("TRANSPORT_DATA_%dPCT", pct),
	}
}

func ValidScenario(pct int) bool {
	return pct >= MinScenario && pct <= MaxScenario && (pct-MinScenario)%ScenarioStep == 0
}

func Scenarios() []int {
	out := make([]int, 0, (MaxScenario-MinScenario)/ScenarioStep+1)
	for p := MinScenario; p <= MaxScenario; p += ScenarioStep {
		out = append(out, p)
	}
	return out
}

// ParseScenario reads the slider value from a query string. Empty means the
// default scenario.
func ParseScenario(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultScenario, nil
	}
	pct, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidScenario, raw)
	}
	if !ValidScenario(pct) {
		return 0, fmt.Errorf("%w: %d must be between %d and %d in steps of %d",
			domain.ErrInvalidScenario, pct, MinScenario, MaxScenario, ScenarioStep)
	}
	return pct, nil
}

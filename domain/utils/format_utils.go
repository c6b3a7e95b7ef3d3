package utils

import (
	"fmt"
	"strings"

	"tokenengine/domain/entities"
)

// FormatMilestoneBreakdown renders completed cycles as "8×N, 15×M, 25×K".
func FormatMilestoneBreakdown(states []*entities.MilestoneState) string {
	parts := make([]string, 0, len(states))
	for _, state := range states {
		parts = append(parts, state.String())
	}
	return strings.Join(parts, ", ")
}

// FormatTokenAmount formats a token count for display (e.g. 1.5k for 1500).
func FormatTokenAmount(value int64) string {
	absValue := value
	sign := ""
	if value < 0 {
		absValue = -value
		sign = "-"
	}

	switch {
	case absValue >= 1_000_000:
		return fmt.Sprintf("%s%.2fM", sign, float64(absValue)/1_000_000)
	case absValue >= 10_000:
		// No decimal places between 10k and 1M
		return fmt.Sprintf("%s%dk", sign, absValue/1_000)
	case absValue >= 1_000:
		// One decimal place under 10k
		return fmt.Sprintf("%s%.1fk", sign, float64(absValue)/1_000)
	default:
		return fmt.Sprintf("%s%d", sign, absValue)
	}
}

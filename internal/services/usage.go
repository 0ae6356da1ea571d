package services

import "julius/internal/core"

// UsageLevel classifies spending against income for one period.
type UsageLevel string

const (
	UsageNoIncome   UsageLevel = "no-income"
	UsageControlled UsageLevel = "controlled"
	UsageWarning    UsageLevel = "warning"
	UsageAlert      UsageLevel = "alert"
)

// UsageTier is the classification shown next to the monthly balance.
type UsageTier struct {
	Level      UsageLevel
	Percentage float64
	Message    string
	Color      string
}

// ClassifyUsage maps spending versus income into a risk tier.
//
// The percentage is not capped: spending above income classifies as alert
// with a percentage over 100. Boundaries are inclusive on the safer side,
// so exactly 30% is still controlled and exactly 50% is still warning.
func ClassifyUsage(totalUsed, totalIncome core.Money) UsageTier {
	if totalIncome.Cents == 0 {
		return UsageTier{
			Level:   UsageNoIncome,
			Message: "No income recorded this period.",
			Color:   "#9e9e9e",
		}
	}

	pct := float64(totalUsed.Cents) / float64(totalIncome.Cents) * 100

	switch {
	case pct <= 30:
		return UsageTier{
			Level:      UsageControlled,
			Percentage: pct,
			Message:    "Spending under control.",
			Color:      "#2e7d32",
		}
	case pct <= 50:
		return UsageTier{
			Level:      UsageWarning,
			Percentage: pct,
			Message:    "Keep an eye on your spending.",
			Color:      "#f9a825",
		}
	default:
		return UsageTier{
			Level:      UsageAlert,
			Percentage: pct,
			Message:    "Spending is taking most of your income.",
			Color:      "#c62828",
		}
	}
}

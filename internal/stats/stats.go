// Package stats implements the dashboard aggregation engine: a pure
// transformation from the raw transaction collection plus the monthly goal
// into the derived DashboardStats snapshot. It has no state and no I/O;
// every call is a full pass over the input, so the same input always
// produces the same snapshot.
package stats

import (
	"math"
	"time"

	"github.com/controleapp/controle-bfa-go/internal/domain"
)

// Compute derives the dashboard snapshot for the calendar month of today.
// It never fails: malformed numeric fields on individual records degrade
// that record's contribution to zero instead of aborting the computation,
// and every division is guarded so no output is ever NaN or Inf.
func Compute(transactions []domain.Transaction, monthlyGoal float64, today time.Time) domain.DashboardStats {
	month, year := today.Month(), today.Year()

	var income, expenses, kilometers, hours float64
	var rides int

	// Income records in arrival order, for the platform breakdown below.
	monthIncome := make([]domain.Transaction, 0, len(transactions))

	for _, t := range transactions {
		if t.Date.Month() != month || t.Date.Year() != year {
			continue
		}
		amount := sanitize(t.Amount)
		switch t.Type {
		case domain.TypeIncome:
			income += amount
			kilometers += sanitize(t.Kilometers)
			hours += sanitize(t.HoursWorked)
			if t.Rides > 0 {
				rides += t.Rides
			}
			monthIncome = append(monthIncome, t)
		case domain.TypeExpense:
			expenses += amount
		}
	}

	goal := sanitize(monthlyGoal)

	var valuePerKm, valuePerHour, valuePerMinute float64
	if kilometers > 0 {
		valuePerKm = income / kilometers
	}
	if hours > 0 {
		valuePerHour = income / hours
		valuePerMinute = income / (hours * 60)
	}

	var goalProgress float64
	if goal > 0 {
		goalProgress = math.Min(100, income/goal*100)
	}

	// Days from today (inclusive) to the end of the current month.
	daysRemaining := LastDayOfMonth(today) - today.Day() + 1

	remaining := math.Max(0, goal-income)
	var dailyGoalNeeded float64
	if daysRemaining > 0 {
		dailyGoalNeeded = remaining / float64(daysRemaining)
	}

	return domain.DashboardStats{
		Planned:         goal,
		Realized:        round2(income),
		Costs:           round2(expenses),
		NetProfit:       round2(income - expenses),
		GoalProgress:    round2(goalProgress),
		Kilometers:      int(math.Round(kilometers)),
		Rides:           rides,
		HoursWorked:     round2(hours),
		ValuePerKm:      round2(valuePerKm),
		ValuePerHour:    round2(valuePerHour),
		ValuePerMinute:  round2(valuePerMinute),
		DaysRemaining:   daysRemaining,
		RemainingAmount: round2(remaining),
		DailyGoalNeeded: round2(dailyGoalNeeded),
		PlatformBreak:   platformBreakdown(monthIncome),
	}
}

// platformBreakdown totals rides per platform over the given income
// records. Records carrying PlatformRides contribute those entries; records
// without fall back to their single legacy platform, counting as one ride
// when Rides is unset. Platforms appear in first-appearance order, then the
// canonical four are appended at zero if missing, so the output is
// deterministic for a given input ordering.
func platformBreakdown(incomeTransactions []domain.Transaction) []domain.PlatformShare {
	counts := make(map[domain.Platform]int)
	order := make([]domain.Platform, 0, 4)

	add := func(p domain.Platform, n int) {
		if p == "" {
			return
		}
		if _, seen := counts[p]; !seen {
			order = append(order, p)
		}
		counts[p] += n
	}

	for _, t := range incomeTransactions {
		if len(t.PlatformRides) > 0 {
			for _, pr := range t.PlatformRides {
				add(pr.Platform, pr.Rides)
			}
			continue
		}
		if t.Platform != "" {
			n := t.Rides
			if n <= 0 {
				n = 1
			}
			add(t.Platform, n)
		}
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	breakdown := make([]domain.PlatformShare, 0, len(order)+4)
	for _, p := range order {
		share := domain.PlatformShare{Platform: p, Rides: counts[p]}
		if total > 0 {
			share.Percentage = int(math.Round(float64(counts[p]) / float64(total) * 100))
		}
		breakdown = append(breakdown, share)
	}

	for _, p := range domain.KnownPlatforms() {
		if _, seen := counts[p]; !seen {
			breakdown = append(breakdown, domain.PlatformShare{Platform: p})
		}
	}

	return breakdown
}

// sanitize degrades malformed numeric input (NaN, Inf, negative) to zero
// so a single bad record never poisons the whole snapshot.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

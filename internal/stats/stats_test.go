package stats_test

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/controleapp/controle-bfa-go/internal/domain"
	"github.com/controleapp/controle-bfa-go/internal/stats"
)

var today = time.Date(2026, time.August, 15, 10, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2026, time.August, d, 0, 0, 0, 0, time.UTC)
}

func sampleMonth() []domain.Transaction {
	return []domain.Transaction{
		{
			ID: "t1", Date: day(3), Amount: 180, Type: domain.TypeIncome,
			Platform: domain.PlatformUber, Rides: 7,
			Kilometers: 60, HoursWorked: 4,
		},
		{
			ID: "t2", Date: day(10), Amount: 150, Type: domain.TypeIncome,
			Platform: domain.Platform99, Rides: 6,
			Kilometers: 45, HoursWorked: 3,
		},
		{
			ID: "t3", Date: day(11), Amount: 40, Type: domain.TypeExpense,
			Category: domain.CategoryFuel,
		},
	}
}

func TestCompute_FullSnapshot(t *testing.T) {
	s := stats.Compute(sampleMonth(), 2000, today)

	if s.Realized != 330 {
		t.Errorf("expected realized 330, got %v", s.Realized)
	}
	if s.Costs != 40 {
		t.Errorf("expected costs 40, got %v", s.Costs)
	}
	if s.NetProfit != 290 {
		t.Errorf("expected net profit 290, got %v", s.NetProfit)
	}
	if s.Kilometers != 105 {
		t.Errorf("expected 105 km, got %v", s.Kilometers)
	}
	if s.Rides != 13 {
		t.Errorf("expected 13 rides, got %v", s.Rides)
	}
	if s.ValuePerKm != 3.14 {
		t.Errorf("expected value/km 3.14, got %v", s.ValuePerKm)
	}
	if s.ValuePerHour != 47.14 {
		t.Errorf("expected value/hour 47.14, got %v", s.ValuePerHour)
	}
	if s.ValuePerMinute != 0.79 {
		t.Errorf("expected value/minute 0.79, got %v", s.ValuePerMinute)
	}
	if s.GoalProgress != 16.5 {
		t.Errorf("expected goal progress 16.5, got %v", s.GoalProgress)
	}
	// August 15th: 17 days left including today.
	if s.DaysRemaining != 17 {
		t.Errorf("expected 17 days remaining, got %v", s.DaysRemaining)
	}
	if s.RemainingAmount != 1670 {
		t.Errorf("expected remaining 1670, got %v", s.RemainingAmount)
	}
	if s.DailyGoalNeeded != 98.24 {
		t.Errorf("expected daily goal 98.24, got %v", s.DailyGoalNeeded)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	txs := sampleMonth()
	first := stats.Compute(txs, 2000, today)
	second := stats.Compute(txs, 2000, today)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical snapshots, got\n%+v\nvs\n%+v", first, second)
	}
}

func TestCompute_IgnoresOtherMonths(t *testing.T) {
	txs := append(sampleMonth(),
		domain.Transaction{
			ID: "old", Date: time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC),
			Amount: 500, Type: domain.TypeIncome,
		},
		domain.Transaction{
			ID: "lastyear", Date: time.Date(2025, time.August, 5, 0, 0, 0, 0, time.UTC),
			Amount: 500, Type: domain.TypeIncome,
		},
	)

	s := stats.Compute(txs, 2000, today)
	if s.Realized != 330 {
		t.Errorf("expected other months excluded, realized %v", s.Realized)
	}
}

func TestCompute_GoalProgressCappedAt100(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "big", Date: day(5), Amount: 5000, Type: domain.TypeIncome},
	}

	s := stats.Compute(txs, 2000, today)
	if s.GoalProgress != 100 {
		t.Errorf("expected progress capped at 100, got %v", s.GoalProgress)
	}
	if s.RemainingAmount != 0 {
		t.Errorf("expected remaining clamped to 0, got %v", s.RemainingAmount)
	}
	if s.DailyGoalNeeded != 0 {
		t.Errorf("expected daily goal 0 once goal is met, got %v", s.DailyGoalNeeded)
	}
}

func TestCompute_ZeroGoal(t *testing.T) {
	s := stats.Compute(sampleMonth(), 0, today)

	if s.GoalProgress != 0 {
		t.Errorf("expected progress 0 without a goal, got %v", s.GoalProgress)
	}
	if s.RemainingAmount != 0 {
		t.Errorf("expected remaining 0 without a goal, got %v", s.RemainingAmount)
	}
	if s.DailyGoalNeeded != 0 {
		t.Errorf("expected daily goal 0 without a goal, got %v", s.DailyGoalNeeded)
	}
}

func TestCompute_ZeroDenominators(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "t1", Date: day(2), Amount: 200, Type: domain.TypeIncome},
	}

	s := stats.Compute(txs, 1000, today)
	if s.ValuePerKm != 0 || s.ValuePerHour != 0 || s.ValuePerMinute != 0 {
		t.Errorf("expected per-unit rates 0 without km/hours, got %v %v %v",
			s.ValuePerKm, s.ValuePerHour, s.ValuePerMinute)
	}
}

func TestCompute_EmptyInput(t *testing.T) {
	s := stats.Compute(nil, 1500, today)

	if s.Realized != 0 || s.Costs != 0 || s.NetProfit != 0 {
		t.Errorf("expected zero totals, got %+v", s)
	}
	if s.RemainingAmount != 1500 {
		t.Errorf("expected full goal remaining, got %v", s.RemainingAmount)
	}
	if len(s.PlatformBreak) != 4 {
		t.Fatalf("expected 4 canonical platforms, got %d", len(s.PlatformBreak))
	}
	for _, share := range s.PlatformBreak {
		if share.Rides != 0 || share.Percentage != 0 {
			t.Errorf("expected zero share for %s, got %+v", share.Platform, share)
		}
	}
}

func TestCompute_NetProfitIdentity(t *testing.T) {
	s := stats.Compute(sampleMonth(), 2000, today)

	if s.NetProfit != s.Realized-s.Costs {
		t.Errorf("net profit %v != realized %v - costs %v", s.NetProfit, s.Realized, s.Costs)
	}
}

func TestCompute_DeleteShiftsSnapshot(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "in", Date: day(4), Amount: 100, Type: domain.TypeIncome},
		{ID: "out", Date: day(5), Amount: 60, Type: domain.TypeExpense, Category: domain.CategoryFuel},
	}

	before := stats.Compute(txs, 0, today)
	if before.NetProfit != 40 {
		t.Fatalf("expected net profit 40 before delete, got %v", before.NetProfit)
	}

	after := stats.Compute(txs[:1], 0, today)
	if after.NetProfit != 100 {
		t.Errorf("expected net profit 100 after delete, got %v", after.NetProfit)
	}
	if after.Costs != 0 {
		t.Errorf("expected costs 0 after delete, got %v", after.Costs)
	}
}

func TestCompute_MalformedNumericsDegradeToZero(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "ok", Date: day(1), Amount: 100, Type: domain.TypeIncome, Kilometers: 10},
		{ID: "nan", Date: day(2), Amount: math.NaN(), Type: domain.TypeIncome, Kilometers: math.Inf(1)},
		{ID: "neg", Date: day(3), Amount: 50, Type: domain.TypeIncome, Kilometers: -20},
	}

	s := stats.Compute(txs, 0, today)
	if s.Realized != 150 {
		t.Errorf("expected NaN amount to contribute 0, realized %v", s.Realized)
	}
	if s.Kilometers != 10 {
		t.Errorf("expected Inf/negative km to contribute 0, got %v", s.Kilometers)
	}
	if math.IsNaN(s.ValuePerKm) || math.IsInf(s.ValuePerKm, 0) {
		t.Errorf("expected finite value/km, got %v", s.ValuePerKm)
	}
}

func TestPlatformBreakdown_MultiPlatform(t *testing.T) {
	txs := []domain.Transaction{
		{
			ID: "t1", Date: day(1), Amount: 200, Type: domain.TypeIncome, Rides: 10,
			PlatformRides: []domain.PlatformRide{
				{Platform: domain.PlatformUber, Rides: 6},
				{Platform: domain.Platform99, Rides: 4},
			},
		},
		{
			ID: "t2", Date: day(2), Amount: 100, Type: domain.TypeIncome,
			Platform: domain.PlatformUber, Rides: 4,
		},
	}

	s := stats.Compute(txs, 0, today)

	if len(s.PlatformBreak) != 4 {
		t.Fatalf("expected 4 platforms, got %d", len(s.PlatformBreak))
	}
	if s.PlatformBreak[0].Platform != domain.PlatformUber || s.PlatformBreak[0].Rides != 10 {
		t.Errorf("expected uber first with 10 rides, got %+v", s.PlatformBreak[0])
	}
	if s.PlatformBreak[1].Platform != domain.Platform99 || s.PlatformBreak[1].Rides != 4 {
		t.Errorf("expected 99 with 4 rides, got %+v", s.PlatformBreak[1])
	}
	// 10/14 and 4/14 round to 71 and 29.
	if s.PlatformBreak[0].Percentage != 71 || s.PlatformBreak[1].Percentage != 29 {
		t.Errorf("unexpected percentages: %+v", s.PlatformBreak[:2])
	}
}

func TestPlatformBreakdown_LegacyFallbackCountsOneRide(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "t1", Date: day(1), Amount: 80, Type: domain.TypeIncome, Platform: domain.PlatformInDrive},
	}

	s := stats.Compute(txs, 0, today)
	if s.PlatformBreak[0].Platform != domain.PlatformInDrive {
		t.Fatalf("expected indrive first, got %+v", s.PlatformBreak[0])
	}
	if s.PlatformBreak[0].Rides != 1 {
		t.Errorf("expected fallback of 1 ride, got %d", s.PlatformBreak[0].Rides)
	}
}

func TestPlatformBreakdown_CustomPlatformKept(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "t1", Date: day(1), Amount: 80, Type: domain.TypeIncome, Platform: "cabify", Rides: 3},
	}

	s := stats.Compute(txs, 0, today)
	if len(s.PlatformBreak) != 5 {
		t.Fatalf("expected custom platform plus 4 canonical, got %d", len(s.PlatformBreak))
	}
	if s.PlatformBreak[0].Platform != "cabify" || s.PlatformBreak[0].Percentage != 100 {
		t.Errorf("expected cabify at 100%%, got %+v", s.PlatformBreak[0])
	}
}

func TestCompute_DaysRemainingOnLastDay(t *testing.T) {
	lastDay := time.Date(2026, time.August, 31, 23, 0, 0, 0, time.UTC)

	s := stats.Compute(nil, 1000, lastDay)
	if s.DaysRemaining != 1 {
		t.Errorf("expected 1 day remaining on the 31st, got %d", s.DaysRemaining)
	}
	if s.DailyGoalNeeded != 1000 {
		t.Errorf("expected full goal needed today, got %v", s.DailyGoalNeeded)
	}
}

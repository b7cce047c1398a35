package stats_test

import (
	"testing"
	"time"

	"github.com/controleapp/controle-bfa-go/internal/domain"
	"github.com/controleapp/controle-bfa-go/internal/stats"
)

func TestComputeReport_RangeFilter(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "before", Date: day(1), Amount: 100, Type: domain.TypeIncome},
		{ID: "in", Date: day(10), Amount: 200, Type: domain.TypeIncome},
		{ID: "after", Date: day(20), Amount: 300, Type: domain.TypeIncome},
	}

	r := stats.ComputeReport(txs, day(5), day(15))
	if r.TotalIncome != 200 {
		t.Errorf("expected only in-range income 200, got %v", r.TotalIncome)
	}
	if r.TransactionCount != 1 {
		t.Errorf("expected 1 transaction in range, got %d", r.TransactionCount)
	}
	if r.Period.From != "2026-08-05" || r.Period.To != "2026-08-15" {
		t.Errorf("unexpected period: %+v", r.Period)
	}
}

func TestComputeReport_WeekdayGrouping(t *testing.T) {
	// August 3rd 2026 is a Monday, August 9th a Sunday.
	txs := []domain.Transaction{
		{ID: "mon", Date: day(3), Amount: 120, Type: domain.TypeIncome, Rides: 5},
		{ID: "sun", Date: day(9), Amount: 80, Type: domain.TypeIncome, Rides: 3},
	}

	r := stats.ComputeReport(txs, day(1), day(31))
	if len(r.ByWeekday) != 7 {
		t.Fatalf("expected 7 weekday rows, got %d", len(r.ByWeekday))
	}
	if r.ByWeekday[0].Weekday != "Domingo" || r.ByWeekday[0].Earnings != 80 {
		t.Errorf("unexpected sunday row: %+v", r.ByWeekday[0])
	}
	if r.ByWeekday[1].Weekday != "Segunda" || r.ByWeekday[1].Earnings != 120 || r.ByWeekday[1].Rides != 5 {
		t.Errorf("unexpected monday row: %+v", r.ByWeekday[1])
	}
}

func TestComputeReport_CategoryTotals(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "f1", Date: day(2), Amount: 50, Type: domain.TypeExpense, Category: domain.CategoryFuel},
		{ID: "f2", Date: day(4), Amount: 30, Type: domain.TypeExpense, Category: domain.CategoryFuel},
		{ID: "food", Date: day(6), Amount: 25, Type: domain.TypeExpense, Category: domain.CategoryFood},
		{ID: "blank", Date: day(8), Amount: 10, Type: domain.TypeExpense},
	}

	r := stats.ComputeReport(txs, day(1), day(31))
	if len(r.ByCategory) != 3 {
		t.Fatalf("expected 3 category rows, got %d", len(r.ByCategory))
	}
	if r.ByCategory[0].Category != domain.CategoryFuel || r.ByCategory[0].Total != 80 {
		t.Errorf("unexpected fuel row: %+v", r.ByCategory[0])
	}
	if r.ByCategory[1].Category != domain.CategoryFood || r.ByCategory[1].Total != 25 {
		t.Errorf("unexpected food row: %+v", r.ByCategory[1])
	}
	// Uncategorized expenses land in "other".
	if r.ByCategory[2].Category != domain.CategoryOther || r.ByCategory[2].Total != 10 {
		t.Errorf("unexpected other row: %+v", r.ByCategory[2])
	}
	if r.TotalExpenses != 115 {
		t.Errorf("expected total expenses 115, got %v", r.TotalExpenses)
	}
}

func TestComputeReport_MonthlyTrendSorted(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "aug", Date: day(10), Amount: 300, Type: domain.TypeIncome},
		{ID: "jun", Date: time.Date(2026, time.June, 5, 0, 0, 0, 0, time.UTC), Amount: 100, Type: domain.TypeIncome},
		{ID: "jul", Date: time.Date(2026, time.July, 5, 0, 0, 0, 0, time.UTC), Amount: 40, Type: domain.TypeExpense, Category: domain.CategoryTolls},
	}

	r := stats.ComputeReport(txs, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC), day(31))
	if len(r.MonthlyTrend) != 3 {
		t.Fatalf("expected 3 months, got %d", len(r.MonthlyTrend))
	}
	want := []string{"2026-06", "2026-07", "2026-08"}
	for i, m := range r.MonthlyTrend {
		if m.Month != want[i] {
			t.Errorf("expected month %s at position %d, got %s", want[i], i, m.Month)
		}
	}
	if r.MonthlyTrend[1].Net != -40 {
		t.Errorf("expected july net -40, got %v", r.MonthlyTrend[1].Net)
	}
	if r.NetProfit != 360 {
		t.Errorf("expected overall net 360, got %v", r.NetProfit)
	}
}

func TestComputeReport_PlatformComparison(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "t1", Date: day(3), Amount: 100, Type: domain.TypeIncome, Platform: domain.PlatformUber, Rides: 3},
		{ID: "t2", Date: day(4), Amount: 100, Type: domain.TypeIncome, Platform: domain.Platform99, Rides: 1},
	}

	r := stats.ComputeReport(txs, day(1), day(31))
	if len(r.ByPlatform) != 4 {
		t.Fatalf("expected 4 platform rows, got %d", len(r.ByPlatform))
	}
	if r.ByPlatform[0].Platform != domain.PlatformUber || r.ByPlatform[0].Percentage != 75 {
		t.Errorf("unexpected uber row: %+v", r.ByPlatform[0])
	}
}

package stats

import (
	"sort"
	"time"

	"github.com/controleapp/controle-bfa-go/internal/domain"
)

var weekdayNames = [7]string{
	"Domingo", "Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado",
}

// ComputeReport aggregates transactions over an arbitrary inclusive date
// range. Unlike the current-month dashboard it groups by weekday, expense
// category and calendar month, which is what the report charts render.
func ComputeReport(transactions []domain.Transaction, from, to time.Time) domain.ReportSummary {
	summary := domain.ReportSummary{
		Period: domain.ReportPeriod{
			From: from.Format("2006-01-02"),
			To:   to.Format("2006-01-02"),
		},
	}

	byWeekday := [7]domain.WeekdayEarnings{}
	for i := range byWeekday {
		byWeekday[i].Weekday = weekdayNames[i]
	}
	byCategory := make(map[domain.ExpenseCategory]float64)
	byMonth := make(map[string]*domain.MonthlyTrend)

	var income, expenses, kilometers, hours float64
	inRange := make([]domain.Transaction, 0, len(transactions))

	for _, t := range transactions {
		if t.Date.Before(from) || t.Date.After(to) {
			continue
		}
		inRange = append(inRange, t)

		amount := sanitize(t.Amount)
		monthKey := t.Date.Format("2006-01")
		trend, ok := byMonth[monthKey]
		if !ok {
			trend = &domain.MonthlyTrend{Month: monthKey}
			byMonth[monthKey] = trend
		}

		switch t.Type {
		case domain.TypeIncome:
			income += amount
			kilometers += sanitize(t.Kilometers)
			hours += sanitize(t.HoursWorked)
			trend.Income += amount

			wd := int(t.Date.Weekday())
			byWeekday[wd].Earnings += amount
			if t.Rides > 0 {
				byWeekday[wd].Rides += t.Rides
				summary.TotalRides += t.Rides
			}
		case domain.TypeExpense:
			expenses += amount
			trend.Expenses += amount
			cat := t.Category
			if cat == "" {
				cat = domain.CategoryOther
			}
			byCategory[cat] += amount
		}
	}

	summary.TotalIncome = round2(income)
	summary.TotalExpenses = round2(expenses)
	summary.NetProfit = round2(income - expenses)
	summary.TotalKilometers = round2(kilometers)
	summary.TotalHours = round2(hours)
	summary.TransactionCount = len(inRange)

	for i := range byWeekday {
		byWeekday[i].Earnings = round2(byWeekday[i].Earnings)
	}
	summary.ByWeekday = byWeekday[:]

	// Category rows in the canonical category order, nonzero only.
	for _, c := range []domain.ExpenseCategory{
		domain.CategoryFuel, domain.CategoryTolls, domain.CategoryFood,
		domain.CategoryMaintenance, domain.CategoryCarWash,
		domain.CategoryInsurance, domain.CategoryTaxes, domain.CategoryOther,
	} {
		if total, ok := byCategory[c]; ok {
			summary.ByCategory = append(summary.ByCategory, domain.CategoryTotal{
				Category: c,
				Total:    round2(total),
			})
		}
	}

	incomeOnly := make([]domain.Transaction, 0, len(inRange))
	for _, t := range inRange {
		if t.Type == domain.TypeIncome {
			incomeOnly = append(incomeOnly, t)
		}
	}
	summary.ByPlatform = platformBreakdown(incomeOnly)

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		trend := byMonth[m]
		trend.Income = round2(trend.Income)
		trend.Expenses = round2(trend.Expenses)
		trend.Net = round2(trend.Income - trend.Expenses)
		summary.MonthlyTrend = append(summary.MonthlyTrend, *trend)
	}

	return summary
}

// LastDayOfMonth returns the number of days in the month containing t.
func LastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

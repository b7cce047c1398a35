package domain

// ============================================================
// Dashboard statistics (derived, never user-mutated)
// ============================================================

// PlatformShare is one row of the per-platform ride breakdown.
type PlatformShare struct {
	Platform   Platform `json:"platform"`
	Rides      int      `json:"rides"`
	Percentage int      `json:"percentage"`
}

// DashboardStats is the derived snapshot for the current calendar month.
// Currency fields are rounded to 2 decimal places, Kilometers to the
// nearest integer; Rides is an exact sum.
type DashboardStats struct {
	Planned         float64         `json:"planned"`
	Realized        float64         `json:"realized"`
	Costs           float64         `json:"costs"`
	NetProfit       float64         `json:"net_profit"`
	GoalProgress    float64         `json:"goal_progress"`
	Kilometers      int             `json:"kilometers"`
	Rides           int             `json:"rides"`
	HoursWorked     float64         `json:"hours_worked"`
	ValuePerKm      float64         `json:"value_per_km"`
	ValuePerHour    float64         `json:"value_per_hour"`
	ValuePerMinute  float64         `json:"value_per_minute"`
	DaysRemaining   int             `json:"days_remaining"`
	RemainingAmount float64         `json:"remaining_amount"`
	DailyGoalNeeded float64         `json:"daily_goal_needed"`
	PlatformBreak   []PlatformShare `json:"platform_breakdown"`
}

// DefaultDashboardStats returns the zero snapshot shown before any data
// loads (or after logout): everything zero, the four canonical platforms
// present.
func DefaultDashboardStats() DashboardStats {
	breakdown := make([]PlatformShare, 0, 4)
	for _, p := range KnownPlatforms() {
		breakdown = append(breakdown, PlatformShare{Platform: p})
	}
	return DashboardStats{PlatformBreak: breakdown}
}

// ============================================================
// Reports (arbitrary date range — a view concern, outside the
// current-month dashboard core)
// ============================================================

// WeekdayEarnings aggregates income per day of week over a report range.
type WeekdayEarnings struct {
	Weekday  string  `json:"weekday"`
	Earnings float64 `json:"earnings"`
	Rides    int     `json:"rides"`
}

// CategoryTotal is spending per expense category.
type CategoryTotal struct {
	Category ExpenseCategory `json:"category"`
	Total    float64         `json:"total"`
}

// MonthlyTrend is one month's income/expense/net in a trend series.
type MonthlyTrend struct {
	Month    string  `json:"month"` // "2026-08"
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// ReportPeriod is the date range a report was computed over.
type ReportPeriod struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ReportSummary is the response of the report endpoint: range totals plus
// the chart series the frontend renders.
type ReportSummary struct {
	Period           ReportPeriod      `json:"period"`
	TotalIncome      float64           `json:"total_income"`
	TotalExpenses    float64           `json:"total_expenses"`
	NetProfit        float64           `json:"net_profit"`
	TotalRides       int               `json:"total_rides"`
	TotalKilometers  float64           `json:"total_kilometers"`
	TotalHours       float64           `json:"total_hours"`
	ByWeekday        []WeekdayEarnings `json:"by_weekday"`
	ByCategory       []CategoryTotal   `json:"by_category"`
	ByPlatform       []PlatformShare   `json:"by_platform"`
	MonthlyTrend     []MonthlyTrend    `json:"monthly_trend"`
	TransactionCount int               `json:"transaction_count"`
}

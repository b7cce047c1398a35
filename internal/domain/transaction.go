// Package domain defines the core business entities for the Controle
// driver finance tracker. These models are independent of external
// services and represent the canonical data structures used throughout
// the backend.
package domain

import "time"

// ============================================================
// Transactions
// ============================================================

// TransactionType discriminates income ("ganho") from expense ("custo").
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the two known transaction types.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Platform is the ride-hailing channel an income was earned through.
// The four canonical platforms are closed constants; any other value is
// treated as a custom platform and carried through as-is.
type Platform string

const (
	PlatformUber       Platform = "uber"
	Platform99         Platform = "99"
	PlatformInDrive    Platform = "indrive"
	PlatformParticular Platform = "particular"
)

// KnownPlatforms returns the canonical platforms in display order.
// Dashboard breakdowns always include these four, even at zero rides.
func KnownPlatforms() []Platform {
	return []Platform{PlatformUber, Platform99, PlatformInDrive, PlatformParticular}
}

// IsCanonical reports whether p is one of the four known platforms.
func (p Platform) IsCanonical() bool {
	switch p {
	case PlatformUber, Platform99, PlatformInDrive, PlatformParticular:
		return true
	}
	return false
}

// ExpenseCategory classifies an expense transaction.
type ExpenseCategory string

const (
	CategoryFuel        ExpenseCategory = "fuel"
	CategoryTolls       ExpenseCategory = "tolls"
	CategoryFood        ExpenseCategory = "food"
	CategoryMaintenance ExpenseCategory = "maintenance"
	CategoryCarWash     ExpenseCategory = "car_wash"
	CategoryInsurance   ExpenseCategory = "insurance"
	CategoryTaxes       ExpenseCategory = "taxes"
	CategoryOther       ExpenseCategory = "other"
)

// Valid reports whether c is one of the known expense categories.
func (c ExpenseCategory) Valid() bool {
	switch c {
	case CategoryFuel, CategoryTolls, CategoryFood, CategoryMaintenance,
		CategoryCarWash, CategoryInsurance, CategoryTaxes, CategoryOther:
		return true
	}
	return false
}

// PlatformRide records how many rides were done on one platform within a
// single income transaction. Newer records carry a list of these; older
// records only have the single Platform + Rides pair.
type PlatformRide struct {
	Platform Platform `json:"platform"`
	Rides    int      `json:"rides"`
}

// Transaction is a single financial event. Exactly one of the income
// attribute group (Platform/PlatformRides/Rides/Kilometers/HoursWorked)
// or the expense attribute group (Category) is populated, governed by Type.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id,omitempty"`
	Date        time.Time       `json:"date"`
	Amount      float64         `json:"amount"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description,omitempty"`

	// Income attributes. Platform and Rides are the legacy single-platform
	// pair, PlatformRides the multi-platform representation; when both are
	// present Rides should equal the sum of PlatformRides[].Rides.
	Platform      Platform       `json:"platform,omitempty"`
	PlatformRides []PlatformRide `json:"platform_rides,omitempty"`
	Rides         int            `json:"rides,omitempty"`
	Kilometers    float64        `json:"kilometers,omitempty"`
	HoursWorked   float64        `json:"hours_worked,omitempty"`

	// Expense attributes.
	Category ExpenseCategory `json:"category,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// IsIncome reports whether the transaction is an income record.
func (t *Transaction) IsIncome() bool { return t.Type == TypeIncome }

// TransactionRequest is the payload to create a transaction.
// Numeric fields arrive as pointers so "absent" and "zero" can be told apart.
type TransactionRequest struct {
	Date          time.Time       `json:"date"`
	Amount        float64         `json:"amount"`
	Type          TransactionType `json:"type"`
	Description   string          `json:"description,omitempty"`
	Platform      Platform        `json:"platform,omitempty"`
	PlatformRides []PlatformRide  `json:"platform_rides,omitempty"`
	Rides         *int            `json:"rides,omitempty"`
	Kilometers    *float64        `json:"kilometers,omitempty"`
	HoursWorked   *float64        `json:"hours_worked,omitempty"`
	Category      ExpenseCategory `json:"category,omitempty"`
}

// TransactionUpdate is a partial-field update. Nil means "leave unchanged".
// When Type switches, the fields of the previous type are cleared by the
// service regardless of what else is set here.
type TransactionUpdate struct {
	Date          *time.Time       `json:"date,omitempty"`
	Amount        *float64         `json:"amount,omitempty"`
	Type          *TransactionType `json:"type,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Platform      *Platform        `json:"platform,omitempty"`
	PlatformRides []PlatformRide   `json:"platform_rides,omitempty"`
	Rides         *int             `json:"rides,omitempty"`
	Kilometers    *float64         `json:"kilometers,omitempty"`
	HoursWorked   *float64         `json:"hours_worked,omitempty"`
	Category      *ExpenseCategory `json:"category,omitempty"`
}

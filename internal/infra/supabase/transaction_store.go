package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/controleapp/controle-bfa-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// TransactionStore implements port.TransactionStore on the transactions
// table.
type TransactionStore struct {
	client *Client
}

// NewTransactionStore creates the transaction store on top of a shared client.
func NewTransactionStore(client *Client) *TransactionStore {
	return &TransactionStore{client: client}
}

// transactionRow maps transactions columns. platform_rides is a jsonb
// column holding the per-platform ride list.
type transactionRow struct {
	ID            string                `json:"id"`
	UserID        string                `json:"user_id"`
	Date          string                `json:"date"`
	Amount        float64               `json:"amount"`
	Type          string                `json:"type"`
	Description   string                `json:"description"`
	Platform      string                `json:"platform"`
	PlatformRides []domain.PlatformRide `json:"platform_rides"`
	Rides         int                   `json:"rides"`
	Kilometers    float64               `json:"kilometers"`
	HoursWorked   float64               `json:"hours_worked"`
	Category      string                `json:"category"`
	CreatedAt     string                `json:"created_at"`
	UpdatedAt     string                `json:"updated_at"`
}

func (r *transactionRow) toDomain() domain.Transaction {
	date, _ := time.Parse(time.RFC3339, r.Date)
	if date.IsZero() {
		date, _ = time.Parse("2006-01-02", r.Date)
	}
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	updated, _ := time.Parse(time.RFC3339, r.UpdatedAt)
	return domain.Transaction{
		ID:            r.ID,
		UserID:        r.UserID,
		Date:          date,
		Amount:        r.Amount,
		Type:          domain.TransactionType(r.Type),
		Description:   r.Description,
		Platform:      domain.Platform(r.Platform),
		PlatformRides: r.PlatformRides,
		Rides:         r.Rides,
		Kilometers:    r.Kilometers,
		HoursWorked:   r.HoursWorked,
		Category:      domain.ExpenseCategory(r.Category),
		CreatedAt:     created,
		UpdatedAt:     updated,
	}
}

// ListTransactions fetches all of a user's transactions, newest first.
func (s *TransactionStore) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var transactions []domain.Transaction

	err := s.client.execute(ctx, func() error {
		path := fmt.Sprintf("transactions?user_id=eq.%s&order=date.desc", url.QueryEscape(userID))
		body, err := s.client.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			transactions = []domain.Transaction{}
			return nil
		}

		var rows []transactionRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("failed to decode transactions: %w", err)
		}
		transactions = make([]domain.Transaction, 0, len(rows))
		for i := range rows {
			transactions = append(transactions, rows[i].toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	return transactions, nil
}

// GetTransaction fetches a single transaction scoped to the user.
func (s *TransactionStore) GetTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetTransaction")
	defer span.End()

	var tx *domain.Transaction
	notFound := false

	err := s.client.execute(ctx, func() error {
		path := fmt.Sprintf("transactions?id=eq.%s&user_id=eq.%s&limit=1",
			url.QueryEscape(transactionID), url.QueryEscape(userID))
		body, err := s.client.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			notFound = true
			return nil
		}

		var rows []transactionRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("failed to decode transaction: %w", err)
		}
		if len(rows) == 0 {
			notFound = true
			return nil
		}
		t := rows[0].toDomain()
		tx = &t
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	if notFound {
		return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
	}
	return tx, nil
}

// CreateTransaction inserts a transaction row.
func (s *TransactionStore) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTransaction")
	defer span.End()

	row := map[string]any{
		"id":           tx.ID,
		"user_id":      tx.UserID,
		"date":         tx.Date.Format(time.RFC3339),
		"amount":       tx.Amount,
		"type":         string(tx.Type),
		"description":  tx.Description,
		"created_at":   tx.CreatedAt.Format(time.RFC3339),
		"updated_at":   tx.UpdatedAt.Format(time.RFC3339),
		"platform":     string(tx.Platform),
		"rides":        tx.Rides,
		"kilometers":   tx.Kilometers,
		"hours_worked": tx.HoursWorked,
		"category":     string(tx.Category),
	}
	if len(tx.PlatformRides) > 0 {
		row["platform_rides"] = tx.PlatformRides
	}

	var created *domain.Transaction
	err := s.client.execute(ctx, func() error {
		body, err := s.client.doPost(ctx, "transactions", row)
		if err != nil {
			return err
		}
		var rows []transactionRow
		if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
			created = tx
			return nil
		}
		t := rows[0].toDomain()
		created = &t
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	return created, nil
}

// UpdateTransaction patches the given columns and returns the fresh row.
func (s *TransactionStore) UpdateTransaction(ctx context.Context, userID, transactionID string, updates map[string]any) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateTransaction")
	defer span.End()

	err := s.client.execute(ctx, func() error {
		path := fmt.Sprintf("transactions?id=eq.%s&user_id=eq.%s",
			url.QueryEscape(transactionID), url.QueryEscape(userID))
		return s.client.doPatch(ctx, path, updates)
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}

	return s.GetTransaction(ctx, userID, transactionID)
}

// DeleteTransaction removes one transaction scoped to the user.
func (s *TransactionStore) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteTransaction")
	defer span.End()

	err := s.client.execute(ctx, func() error {
		path := fmt.Sprintf("transactions?id=eq.%s&user_id=eq.%s",
			url.QueryEscape(transactionID), url.QueryEscape(userID))
		return s.client.doDelete(ctx, path)
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	return nil
}

// DeleteAllTransactions removes every transaction of the user. Part of the
// account deletion cascade.
func (s *TransactionStore) DeleteAllTransactions(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteAllTransactions")
	defer span.End()

	err := s.client.execute(ctx, func() error {
		path := fmt.Sprintf("transactions?user_id=eq.%s", url.QueryEscape(userID))
		return s.client.doDelete(ctx, path)
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/transactions", Err: err}
	}
	return nil
}

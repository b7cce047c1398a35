package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/controleapp/controle-bfa-go/internal/domain"
)

// BillingStore implements port.BillingStore on the payments and
// subscriptions tables plus the has_access flag on user_profiles.
type BillingStore struct {
	client *Client
}

// NewBillingStore creates the billing store on top of a shared client.
func NewBillingStore(client *Client) *BillingStore {
	return &BillingStore{client: client}
}

type paymentRow struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	EventID   string  `json:"event_id"`
	ProductID string  `json:"product_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

func (r *paymentRow) toDomain() domain.PaymentRecord {
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	return domain.PaymentRecord{
		ID:        r.ID,
		UserID:    r.UserID,
		EventID:   r.EventID,
		ProductID: r.ProductID,
		Amount:    r.Amount,
		Currency:  r.Currency,
		Status:    r.Status,
		CreatedAt: created,
	}
}

type subscriptionRow struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	SubscriptionID string `json:"subscription_id"`
	CustomerID     string `json:"customer_id"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

func (r *subscriptionRow) toDomain() *domain.SubscriptionRecord {
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	updated, _ := time.Parse(time.RFC3339, r.UpdatedAt)
	return &domain.SubscriptionRecord{
		ID:             r.ID,
		UserID:         r.UserID,
		SubscriptionID: r.SubscriptionID,
		CustomerID:     r.CustomerID,
		Status:         r.Status,
		CreatedAt:      created,
		UpdatedAt:      updated,
	}
}

// RecordPayment inserts a payment row.
func (s *BillingStore) RecordPayment(ctx context.Context, payment *domain.PaymentRecord) (*domain.PaymentRecord, error) {
	ctx, span := tracer.Start(ctx, "Supabase.RecordPayment")
	defer span.End()

	row := map[string]any{
		"id":         payment.ID,
		"user_id":    payment.UserID,
		"event_id":   payment.EventID,
		"product_id": payment.ProductID,
		"amount":     payment.Amount,
		"currency":   payment.Currency,
		"status":     payment.Status,
		"created_at": payment.CreatedAt.Format(time.RFC3339),
	}

	err := s.client.execute(ctx, func() error {
		_, err := s.client.doPost(ctx, "payments", row)
		return err
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/billing", Err: err}
	}
	return payment, nil
}

// ListPayments fetches all payment rows for the user.
func (s *BillingStore) ListPayments(ctx context.Context, userID string) ([]domain.PaymentRecord, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListPayments")
	defer span.End()

	var payments []domain.PaymentRecord

	err := s.client.execute(ctx, func() error {
		path := fmt.Sprintf("payments?user_id=eq.%s&order=created_at.desc", url.QueryEscape(userID))
		body, err := s.client.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			payments = []domain.PaymentRecord{}
			return nil
		}

		var rows []paymentRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("failed to decode payments: %w", err)
		}
		payments = make([]domain.PaymentRecord, 0, len(rows))
		for i := range rows {
			payments = append(payments, rows[i].toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/billing", Err: err}
	}
	return payments, nil
}

// UpsertSubscription updates the row matching the processor's subscription
// id, inserting it when absent.
func (s *BillingStore) UpsertSubscription(ctx context.Context, sub *domain.SubscriptionRecord) (*domain.SubscriptionRecord, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertSubscription")
	defer span.End()

	now := time.Now().Format(time.RFC3339)

	err := s.client.execute(ctx, func() error {
		path := fmt.Sprintf("subscriptions?subscription_id=eq.%s&limit=1", url.QueryEscape(sub.SubscriptionID))
		body, err := s.client.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}

		if body != nil && string(body) != "[]" {
			updates := map[string]any{
				"status":     sub.Status,
				"updated_at": now,
			}
			return s.client.doPatch(ctx, fmt.Sprintf("subscriptions?subscription_id=eq.%s",
				url.QueryEscape(sub.SubscriptionID)), updates)
		}

		row := map[string]any{
			"id":              sub.ID,
			"user_id":         sub.UserID,
			"subscription_id": sub.SubscriptionID,
			"customer_id":     sub.CustomerID,
			"status":          sub.Status,
			"created_at":      now,
			"updated_at":      now,
		}
		_, err = s.client.doPost(ctx, "subscriptions", row)
		return err
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/billing", Err: err}
	}
	return sub, nil
}

// GetSubscription fetches the user's most recent subscription.
func (s *BillingStore) GetSubscription(ctx context.Context, userID string) (*domain.SubscriptionRecord, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetSubscription")
	defer span.End()

	var sub *domain.SubscriptionRecord
	notFound := false

	err := s.client.execute(ctx, func() error {
		path := fmt.Sprintf("subscriptions?user_id=eq.%s&order=updated_at.desc&limit=1", url.QueryEscape(userID))
		body, err := s.client.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			notFound = true
			return nil
		}

		var rows []subscriptionRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("failed to decode subscriptions: %w", err)
		}
		if len(rows) == 0 {
			notFound = true
			return nil
		}
		sub = rows[0].toDomain()
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/billing", Err: err}
	}
	if notFound {
		return nil, &domain.ErrNotFound{Resource: "subscription", ID: userID}
	}
	return sub, nil
}

// SetAccess flips the has_access flag on the user's profile.
func (s *BillingStore) SetAccess(ctx context.Context, userID string, hasAccess bool) error {
	ctx, span := tracer.Start(ctx, "Supabase.SetAccess")
	defer span.End()

	err := s.client.execute(ctx, func() error {
		path := fmt.Sprintf("user_profiles?id=eq.%s", url.QueryEscape(userID))
		return s.client.doPatch(ctx, path, map[string]any{
			"has_access": hasAccess,
			"updated_at": time.Now().Format(time.RFC3339),
		})
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/billing", Err: err}
	}
	return nil
}

// DeletePayments removes every payment row of the user. Part of the
// account deletion cascade.
func (s *BillingStore) DeletePayments(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeletePayments")
	defer span.End()

	err := s.client.execute(ctx, func() error {
		path := fmt.Sprintf("payments?user_id=eq.%s", url.QueryEscape(userID))
		return s.client.doDelete(ctx, path)
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/billing", Err: err}
	}
	return nil
}

package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/controleapp/controle-bfa-go/internal/domain"
)

// --- Mocks ---

type mockProfileStore struct {
	mu      sync.Mutex
	profile *domain.UserProfile
	err     error

	getCalls    int
	deleteCalls int
}

func (m *mockProfileStore) GetProfile(_ context.Context, userID string) (*domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.err != nil {
		return nil, m.err
	}
	if m.profile == nil {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID}
	}
	p := *m.profile
	return &p, nil
}

func (m *mockProfileStore) CreateProfile(_ context.Context, profile *domain.UserProfile) (*domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p := *profile
	m.profile = &p
	return profile, nil
}

func (m *mockProfileStore) UpdateProfile(_ context.Context, userID string, updates map[string]any) (*domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.profile == nil {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID}
	}
	if v, ok := updates["name"].(string); ok {
		m.profile.Name = v
	}
	if v, ok := updates["monthly_goal"].(float64); ok {
		m.profile.MonthlyGoal = v
	}
	if v, ok := updates["license_plate"].(string); ok {
		m.profile.LicensePlate = v
	}
	p := *m.profile
	return &p, nil
}

func (m *mockProfileStore) DeleteProfile(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	if m.err != nil {
		return m.err
	}
	m.profile = nil
	return nil
}

type mockTransactionStore struct {
	mu  sync.Mutex
	txs []domain.Transaction
	err error

	listCalls   int
	deleteCalls int
}

func (m *mockTransactionStore) ListTransactions(_ context.Context, _ string) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Transaction, len(m.txs))
	copy(out, m.txs)
	return out, nil
}

func (m *mockTransactionStore) GetTransaction(_ context.Context, _, transactionID string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.txs {
		if m.txs[i].ID == transactionID {
			tx := m.txs[i]
			return &tx, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
}

func (m *mockTransactionStore) CreateTransaction(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.txs = append(m.txs, *tx)
	return tx, nil
}

func (m *mockTransactionStore) UpdateTransaction(_ context.Context, _, transactionID string, updates map[string]any) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.txs {
		if m.txs[i].ID != transactionID {
			continue
		}
		tx := &m.txs[i]
		if v, ok := updates["amount"].(float64); ok {
			tx.Amount = v
		}
		if v, ok := updates["description"].(string); ok {
			tx.Description = v
		}
		if v, ok := updates["type"].(string); ok {
			tx.Type = domain.TransactionType(v)
		}
		if v, ok := updates["date"].(string); ok {
			if d, err := time.Parse(time.RFC3339, v); err == nil {
				tx.Date = d
			}
		}
		if raw, present := updates["category"]; present {
			if v, ok := raw.(string); ok {
				tx.Category = domain.ExpenseCategory(v)
			} else {
				tx.Category = ""
			}
		}
		if raw, present := updates["platform"]; present {
			if v, ok := raw.(string); ok {
				tx.Platform = domain.Platform(v)
			} else {
				tx.Platform = ""
			}
		}
		if raw, present := updates["rides"]; present {
			if v, ok := raw.(int); ok {
				tx.Rides = v
			} else {
				tx.Rides = 0
			}
		}
		if raw, present := updates["kilometers"]; present {
			if v, ok := raw.(float64); ok {
				tx.Kilometers = v
			} else {
				tx.Kilometers = 0
			}
		}
		if raw, present := updates["hours_worked"]; present {
			if v, ok := raw.(float64); ok {
				tx.HoursWorked = v
			} else {
				tx.HoursWorked = 0
			}
		}
		out := *tx
		return &out, nil
	}
	return nil, &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
}

func (m *mockTransactionStore) DeleteTransaction(_ context.Context, _, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	if m.err != nil {
		return m.err
	}
	for i := range m.txs {
		if m.txs[i].ID == transactionID {
			m.txs = append(m.txs[:i], m.txs[i+1:]...)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "transaction", ID: transactionID}
}

func (m *mockTransactionStore) DeleteAllTransactions(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	if m.err != nil {
		return m.err
	}
	m.txs = nil
	return nil
}

type mockBillingStore struct {
	mu       sync.Mutex
	payments []domain.PaymentRecord
	sub      *domain.SubscriptionRecord
	access   map[string]bool
	err      error

	deletePaymentsCalls int
}

func newMockBillingStore() *mockBillingStore {
	return &mockBillingStore{access: make(map[string]bool)}
}

func (m *mockBillingStore) RecordPayment(_ context.Context, payment *domain.PaymentRecord) (*domain.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.payments = append(m.payments, *payment)
	return payment, nil
}

func (m *mockBillingStore) ListPayments(_ context.Context, userID string) ([]domain.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.PaymentRecord
	for _, p := range m.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockBillingStore) UpsertSubscription(_ context.Context, sub *domain.SubscriptionRecord) (*domain.SubscriptionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s := *sub
	m.sub = &s
	return sub, nil
}

func (m *mockBillingStore) GetSubscription(_ context.Context, userID string) (*domain.SubscriptionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.sub == nil {
		return nil, &domain.ErrNotFound{Resource: "subscription", ID: userID}
	}
	s := *m.sub
	return &s, nil
}

func (m *mockBillingStore) SetAccess(_ context.Context, userID string, hasAccess bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.access[userID] = hasAccess
	return nil
}

func (m *mockBillingStore) DeletePayments(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletePaymentsCalls++
	if m.err != nil {
		return m.err
	}
	var kept []domain.PaymentRecord
	for _, p := range m.payments {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	m.payments = kept
	return nil
}

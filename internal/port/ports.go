// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/controleapp/controle-bfa-go/internal/domain"
)

// ProfileStore persists driver profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
	CreateProfile(ctx context.Context, profile *domain.UserProfile) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, updates map[string]any) (*domain.UserProfile, error)
	DeleteProfile(ctx context.Context, userID string) error
}

// TransactionStore persists financial transactions.
type TransactionStore interface {
	ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
	GetTransaction(ctx context.Context, userID, transactionID string) (*domain.Transaction, error)
	CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, updates map[string]any) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
	DeleteAllTransactions(ctx context.Context, userID string) error
}

// BillingStore persists payment and subscription records coming off the
// payment processor webhook.
type BillingStore interface {
	RecordPayment(ctx context.Context, payment *domain.PaymentRecord) (*domain.PaymentRecord, error)
	ListPayments(ctx context.Context, userID string) ([]domain.PaymentRecord, error)
	UpsertSubscription(ctx context.Context, sub *domain.SubscriptionRecord) (*domain.SubscriptionRecord, error)
	GetSubscription(ctx context.Context, userID string) (*domain.SubscriptionRecord, error)
	SetAccess(ctx context.Context, userID string, hasAccess bool) error
	DeletePayments(ctx context.Context, userID string) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	DeleteByPrefix(prefix string)
}

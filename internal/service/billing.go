package service

import (
	"context"
	"errors"
	"time"

	"github.com/controleapp/controle-bfa-go/internal/domain"
	"github.com/controleapp/controle-bfa-go/internal/infra/observability"
	"github.com/controleapp/controle-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var billingTracer = otel.Tracer("service/billing")

// Billing processes payment processor events and answers access checks.
// Webhook signature verification happens upstream; by the time an event
// reaches this service it is trusted.
type Billing struct {
	billing      port.BillingStore
	profiles     port.ProfileStore
	transactions port.TransactionStore
	tracker      *Tracker
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewBilling creates the billing service.
func NewBilling(
	billing port.BillingStore,
	profiles port.ProfileStore,
	transactions port.TransactionStore,
	tracker *Tracker,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Billing {
	return &Billing{
		billing:      billing,
		profiles:     profiles,
		transactions: transactions,
		tracker:      tracker,
		metrics:      metrics,
		logger:       logger,
	}
}

// HandleEvent records a billing event and updates the user's access flag.
// One-time purchases and live subscriptions grant access; a deleted
// subscription revokes it unless a one-time purchase exists.
func (b *Billing) HandleEvent(ctx context.Context, event *domain.BillingEvent) (*domain.AccessStatus, error) {
	ctx, span := billingTracer.Start(ctx, "Billing.HandleEvent")
	defer span.End()

	if event.UserID == "" {
		return nil, &domain.ErrValidation{Field: "user_id", Message: "required"}
	}

	switch event.Type {
	case domain.EventCheckoutCompleted, domain.EventPaymentSucceeded:
		payment := &domain.PaymentRecord{
			ID:        uuid.New().String(),
			UserID:    event.UserID,
			EventID:   event.EventID,
			ProductID: event.ProductID,
			Amount:    event.Amount,
			Currency:  event.Currency,
			Status:    "succeeded",
			CreatedAt: time.Now(),
		}
		if _, err := b.billing.RecordPayment(ctx, payment); err != nil {
			b.metrics.IncrExternalError("billing")
			return nil, err
		}
		return b.grantAccess(ctx, event.UserID, true)

	case domain.EventSubscriptionCreated, domain.EventSubscriptionUpdated:
		sub := &domain.SubscriptionRecord{
			ID:             uuid.New().String(),
			UserID:         event.UserID,
			SubscriptionID: event.SubscriptionID,
			CustomerID:     event.CustomerID,
			Status:         subscriptionStatus(event.Status),
			UpdatedAt:      time.Now(),
		}
		if _, err := b.billing.UpsertSubscription(ctx, sub); err != nil {
			b.metrics.IncrExternalError("billing")
			return nil, err
		}
		return b.grantAccess(ctx, event.UserID, sub.Status == "active")

	case domain.EventSubscriptionDeleted:
		sub := &domain.SubscriptionRecord{
			ID:             uuid.New().String(),
			UserID:         event.UserID,
			SubscriptionID: event.SubscriptionID,
			CustomerID:     event.CustomerID,
			Status:         "canceled",
			UpdatedAt:      time.Now(),
		}
		if _, err := b.billing.UpsertSubscription(ctx, sub); err != nil {
			b.metrics.IncrExternalError("billing")
			return nil, err
		}
		// A one-time purchase outlives the subscription.
		payments, err := b.billing.ListPayments(ctx, event.UserID)
		if err != nil {
			return nil, err
		}
		return b.grantAccess(ctx, event.UserID, len(payments) > 0)

	default:
		return nil, &domain.ErrValidation{Field: "type", Message: "unknown billing event type"}
	}
}

// Access reports whether the user may use the gated features.
func (b *Billing) Access(ctx context.Context, userID string) (*domain.AccessStatus, error) {
	ctx, span := billingTracer.Start(ctx, "Billing.Access")
	defer span.End()

	profile, err := b.profiles.GetProfile(ctx, userID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return &domain.AccessStatus{UserID: userID}, nil
		}
		return nil, err
	}

	payments, err := b.billing.ListPayments(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.AccessStatus{
		UserID:     userID,
		HasAccess:  profile.HasAccess,
		HasPayment: len(payments) > 0,
	}, nil
}

// DeleteAccount removes everything stored for a user: transactions first,
// then payments, then the profile. A failure partway leaves later steps
// untouched so the cascade can be retried.
func (b *Billing) DeleteAccount(ctx context.Context, userID string) error {
	ctx, span := billingTracer.Start(ctx, "Billing.DeleteAccount")
	defer span.End()

	if err := b.transactions.DeleteAllTransactions(ctx, userID); err != nil {
		b.logger.Error("failed to delete transactions",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return err
	}
	if err := b.billing.DeletePayments(ctx, userID); err != nil {
		b.logger.Error("failed to delete payments",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return err
	}
	if err := b.profiles.DeleteProfile(ctx, userID); err != nil {
		b.logger.Error("failed to delete profile",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return err
	}

	b.tracker.Reset(userID)

	b.logger.Info("account deleted", zap.String("user_id", userID))
	return nil
}

// grantAccess flips the access flag and invalidates the cached profile.
func (b *Billing) grantAccess(ctx context.Context, userID string, hasAccess bool) (*domain.AccessStatus, error) {
	if err := b.billing.SetAccess(ctx, userID, hasAccess); err != nil {
		b.metrics.IncrExternalError("billing")
		return nil, err
	}
	b.tracker.cache.Delete("user:" + userID + ":profile")

	b.logger.Info("access updated",
		zap.String("user_id", userID),
		zap.Bool("has_access", hasAccess),
	)
	return &domain.AccessStatus{UserID: userID, HasAccess: hasAccess}, nil
}

// subscriptionStatus normalizes the processor's status string; anything
// other than an explicit terminal state counts as active.
func subscriptionStatus(status string) string {
	switch status {
	case "canceled", "incomplete_expired", "unpaid":
		return status
	default:
		return "active"
	}
}

// Package service contains the application services: the transaction
// tracker with its dashboard recomputation, the goal confirmation flow
// and the billing event processor.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/controleapp/controle-bfa-go/internal/domain"
	"github.com/controleapp/controle-bfa-go/internal/infra/observability"
	"github.com/controleapp/controle-bfa-go/internal/port"
	"github.com/controleapp/controle-bfa-go/internal/stats"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/tracker")

// Tracker owns the transaction collection and the derived dashboard
// snapshot. Mutations for a given user are serialized through a per-user
// lock, and the snapshot is recomputed synchronously before the mutation
// returns, so a read issued after a successful write always sees the
// updated statistics.
type Tracker struct {
	profiles     port.ProfileStore
	transactions port.TransactionStore
	cache        port.Cache[any]
	metrics      *observability.Metrics
	logger       *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	// now is swappable in tests to pin the current month.
	now func() time.Time
}

// TrackerOption customizes the tracker at construction time.
type TrackerOption func(*Tracker)

// WithClock overrides the time source, pinning "the current month" in tests.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates the tracker service with all dependencies injected.
func NewTracker(
	profiles port.ProfileStore,
	transactions port.TransactionStore,
	cache port.Cache[any],
	metrics *observability.Metrics,
	logger *zap.Logger,
	opts ...TrackerOption,
) *Tracker {
	t := &Tracker{
		profiles:     profiles,
		transactions: transactions,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		locks:        make(map[string]*sync.Mutex),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// userLock returns the mutation lock for one user, creating it on first use.
func (t *Tracker) userLock(userID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[userID] = l
	}
	return l
}

// GetProfile fetches the driver profile, creating a default one on first
// login so the rest of the API never sees a missing profile.
func (t *Tracker) GetProfile(ctx context.Context, userID, email string) (*domain.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "Tracker.GetProfile")
	defer span.End()

	cacheKey := fmt.Sprintf("user:%s:profile", userID)
	if cached, ok := t.cache.Get(cacheKey); ok {
		if p, ok := cached.(*domain.UserProfile); ok {
			t.metrics.IncrCacheHit("profile")
			return p, nil
		}
	}
	t.metrics.IncrCacheMiss("profile")

	p, err := t.profiles.GetProfile(ctx, userID)
	if err != nil {
		var notFound *domain.ErrNotFound
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("profile fetch: %w", err)
		}
		p, err = t.profiles.CreateProfile(ctx, &domain.UserProfile{
			ID:    userID,
			Email: email,
		})
		if err != nil {
			return nil, fmt.Errorf("profile create: %w", err)
		}
		t.logger.Info("profile created on first access", zap.String("user_id", userID))
	}
	t.cache.Set(cacheKey, p)
	return p, nil
}

// UpdateProfile applies a partial profile update. Changing the monthly
// goal triggers a dashboard recompute since planned/remaining depend on it.
func (t *Tracker) UpdateProfile(ctx context.Context, userID string, upd *domain.ProfileUpdate) (*domain.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "Tracker.UpdateProfile")
	defer span.End()

	lock := t.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	updates := make(map[string]any)
	if upd.Name != nil {
		updates["name"] = *upd.Name
	}
	if upd.MonthlyGoal != nil {
		goal := clampNumber(*upd.MonthlyGoal)
		if goal < 0 {
			return nil, &domain.ErrValidation{Field: "monthly_goal", Message: "must not be negative"}
		}
		updates["monthly_goal"] = goal
	}
	if upd.LicensePlate != nil {
		updates["license_plate"] = *upd.LicensePlate
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}

	p, err := t.profiles.UpdateProfile(ctx, userID, updates)
	if err != nil {
		return nil, err
	}
	t.cache.Set(fmt.Sprintf("user:%s:profile", userID), p)

	if upd.MonthlyGoal != nil {
		if _, err := t.recompute(ctx, userID, "goal"); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ListTransactions returns all of the user's transactions, newest first.
func (t *Tracker) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Tracker.ListTransactions")
	defer span.End()

	return t.transactions.ListTransactions(ctx, userID)
}

// CreateTransaction validates, normalizes and persists a new transaction,
// then recomputes the dashboard before returning.
func (t *Tracker) CreateTransaction(ctx context.Context, userID string, req *domain.TransactionRequest) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Tracker.CreateTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() { t.metrics.RecordRequestDuration("transaction_create", time.Since(start)) }()

	tx, err := buildTransaction(userID, req)
	if err != nil {
		return nil, err
	}

	lock := t.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	created, err := t.transactions.CreateTransaction(ctx, tx)
	if err != nil {
		t.logger.Error("failed to create transaction",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	if _, err := t.recompute(ctx, userID, "insert"); err != nil {
		return nil, err
	}

	t.logger.Info("transaction created",
		zap.String("user_id", userID),
		zap.String("transaction_id", created.ID),
		zap.String("type", string(created.Type)),
		zap.Float64("amount", created.Amount),
	)
	return created, nil
}

// UpdateTransaction applies a partial update. When the type flips between
// income and expense, the fields of the previous type are cleared.
func (t *Tracker) UpdateTransaction(ctx context.Context, userID, transactionID string, upd *domain.TransactionUpdate) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Tracker.UpdateTransaction")
	defer span.End()

	lock := t.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := t.transactions.GetTransaction(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	updates, err := buildTransactionUpdates(existing, upd)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}

	updated, err := t.transactions.UpdateTransaction(ctx, userID, transactionID, updates)
	if err != nil {
		return nil, err
	}

	if _, err := t.recompute(ctx, userID, "update"); err != nil {
		return nil, err
	}

	t.logger.Info("transaction updated",
		zap.String("user_id", userID),
		zap.String("transaction_id", transactionID),
	)
	return updated, nil
}

// DeleteTransaction removes a transaction and recomputes the dashboard.
// Deleting an unknown id returns ErrNotFound and leaves the snapshot as is.
func (t *Tracker) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	ctx, span := tracer.Start(ctx, "Tracker.DeleteTransaction")
	defer span.End()

	lock := t.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := t.transactions.GetTransaction(ctx, userID, transactionID); err != nil {
		return err
	}
	if err := t.transactions.DeleteTransaction(ctx, userID, transactionID); err != nil {
		return err
	}

	if _, err := t.recompute(ctx, userID, "delete"); err != nil {
		return err
	}

	t.logger.Info("transaction deleted",
		zap.String("user_id", userID),
		zap.String("transaction_id", transactionID),
	)
	return nil
}

// Dashboard returns the current-month statistics snapshot. The cached
// snapshot written by the last mutation is served when fresh; otherwise a
// full recompute runs.
func (t *Tracker) Dashboard(ctx context.Context, userID string) (*domain.DashboardStats, error) {
	ctx, span := tracer.Start(ctx, "Tracker.Dashboard")
	defer span.End()

	cacheKey := fmt.Sprintf("user:%s:dashboard", userID)
	if cached, ok := t.cache.Get(cacheKey); ok {
		if s, ok := cached.(*domain.DashboardStats); ok {
			t.metrics.IncrCacheHit("dashboard")
			return s, nil
		}
	}
	t.metrics.IncrCacheMiss("dashboard")

	return t.recompute(ctx, userID, "load")
}

// Report aggregates the user's transactions over an arbitrary date range.
func (t *Tracker) Report(ctx context.Context, userID string, from, to time.Time) (*domain.ReportSummary, error) {
	ctx, span := tracer.Start(ctx, "Tracker.Report")
	defer span.End()

	if to.Before(from) {
		return nil, &domain.ErrValidation{Field: "to", Message: "must not be before 'from'"}
	}

	txs, err := t.transactions.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := stats.ComputeReport(txs, from, to)
	return &summary, nil
}

// Reset drops all of the user's cached state. The next dashboard read
// starts from the zero snapshot and recomputes from persistence.
func (t *Tracker) Reset(userID string) {
	t.cache.DeleteByPrefix(fmt.Sprintf("user:%s:", userID))

	t.mu.Lock()
	delete(t.locks, userID)
	t.mu.Unlock()

	t.logger.Info("user state reset", zap.String("user_id", userID))
}

// recompute loads profile and transactions concurrently, derives a fresh
// snapshot and writes it through to the cache. Callers must hold the
// user's mutation lock when recomputing after a write.
func (t *Tracker) recompute(ctx context.Context, userID, trigger string) (*domain.DashboardStats, error) {
	start := time.Now()
	defer func() { t.metrics.RecordRecompute(trigger, time.Since(start)) }()

	var (
		profile *domain.UserProfile
		txs     []domain.Transaction
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := t.profiles.GetProfile(gCtx, userID)
		if err != nil {
			var notFound *domain.ErrNotFound
			if errors.As(err, &notFound) {
				// No profile yet means no goal yet.
				profile = &domain.UserProfile{ID: userID}
				return nil
			}
			t.metrics.IncrExternalError("profiles")
			return fmt.Errorf("profile fetch: %w", err)
		}
		profile = p
		return nil
	})

	g.Go(func() error {
		list, err := t.transactions.ListTransactions(gCtx, userID)
		if err != nil {
			t.metrics.IncrExternalError("transactions")
			return fmt.Errorf("transactions fetch: %w", err)
		}
		txs = list
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot := stats.Compute(txs, profile.MonthlyGoal, t.now())
	t.cache.Set(fmt.Sprintf("user:%s:dashboard", userID), &snapshot)
	return &snapshot, nil
}

// buildTransaction validates a create request and produces the record to
// persist. Non-finite numeric input is clamped to zero rather than
// rejected; structurally invalid requests fail with ErrValidation.
func buildTransaction(userID string, req *domain.TransactionRequest) (*domain.Transaction, error) {
	if !req.Type.Valid() {
		return nil, &domain.ErrValidation{Field: "type", Message: "must be 'income' or 'expense'"}
	}
	if req.Date.IsZero() {
		return nil, &domain.ErrValidation{Field: "date", Message: "required"}
	}
	amount := clampNumber(req.Amount)
	if amount < 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must not be negative"}
	}

	now := time.Now()
	tx := &domain.Transaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		Date:        req.Date,
		Amount:      amount,
		Type:        req.Type,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	switch req.Type {
	case domain.TypeIncome:
		tx.Platform = req.Platform
		tx.PlatformRides = req.PlatformRides
		if req.Rides != nil {
			if *req.Rides < 0 {
				return nil, &domain.ErrValidation{Field: "rides", Message: "must not be negative"}
			}
			tx.Rides = *req.Rides
		} else if len(req.PlatformRides) > 0 {
			for _, pr := range req.PlatformRides {
				tx.Rides += pr.Rides
			}
		}
		if req.Kilometers != nil {
			tx.Kilometers = clampNonNegative(*req.Kilometers)
		}
		if req.HoursWorked != nil {
			tx.HoursWorked = clampNonNegative(*req.HoursWorked)
		}
	case domain.TypeExpense:
		if req.Category != "" && !req.Category.Valid() {
			return nil, &domain.ErrValidation{Field: "category", Message: "unknown expense category"}
		}
		tx.Category = req.Category
		if req.Category == domain.CategoryOther && req.Description == "" {
			return nil, &domain.ErrValidation{Field: "description", Message: "required for category 'other'"}
		}
	}

	return tx, nil
}

// buildTransactionUpdates translates a partial update into a column map.
// A type switch clears the columns of the previous type.
func buildTransactionUpdates(existing *domain.Transaction, upd *domain.TransactionUpdate) (map[string]any, error) {
	updates := make(map[string]any)

	newType := existing.Type
	if upd.Type != nil {
		if !upd.Type.Valid() {
			return nil, &domain.ErrValidation{Field: "type", Message: "must be 'income' or 'expense'"}
		}
		newType = *upd.Type
		updates["type"] = string(newType)
		if newType != existing.Type {
			if newType == domain.TypeIncome {
				updates["category"] = nil
			} else {
				updates["platform"] = nil
				updates["platform_rides"] = nil
				updates["rides"] = nil
				updates["kilometers"] = nil
				updates["hours_worked"] = nil
			}
		}
	}

	if upd.Date != nil {
		if upd.Date.IsZero() {
			return nil, &domain.ErrValidation{Field: "date", Message: "must not be zero"}
		}
		updates["date"] = upd.Date.Format(time.RFC3339)
	}
	if upd.Amount != nil {
		amount := clampNumber(*upd.Amount)
		if amount < 0 {
			return nil, &domain.ErrValidation{Field: "amount", Message: "must not be negative"}
		}
		updates["amount"] = amount
	}
	if upd.Description != nil {
		updates["description"] = *upd.Description
	}

	if newType == domain.TypeIncome {
		if upd.Platform != nil {
			updates["platform"] = string(*upd.Platform)
		}
		if upd.PlatformRides != nil {
			updates["platform_rides"] = upd.PlatformRides
		}
		if upd.Rides != nil {
			if *upd.Rides < 0 {
				return nil, &domain.ErrValidation{Field: "rides", Message: "must not be negative"}
			}
			updates["rides"] = *upd.Rides
		}
		if upd.Kilometers != nil {
			updates["kilometers"] = clampNonNegative(*upd.Kilometers)
		}
		if upd.HoursWorked != nil {
			updates["hours_worked"] = clampNonNegative(*upd.HoursWorked)
		}
	} else if upd.Category != nil {
		if !upd.Category.Valid() {
			return nil, &domain.ErrValidation{Field: "category", Message: "unknown expense category"}
		}
		updates["category"] = string(*upd.Category)
	}

	updates["updated_at"] = time.Now().Format(time.RFC3339)
	return updates, nil
}

// clampNumber maps NaN and Inf to zero, leaving everything else intact.
func clampNumber(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// clampNonNegative additionally floors negatives at zero.
func clampNonNegative(v float64) float64 {
	v = clampNumber(v)
	if v < 0 {
		return 0
	}
	return v
}

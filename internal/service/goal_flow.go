package service

import (
	"context"
	"sync"

	"github.com/controleapp/controle-bfa-go/internal/domain"

	"go.uber.org/zap"
)

// GoalFlowState is the step of the two-phase goal edit.
type GoalFlowState string

const (
	// GoalStateEditing means no pending value; the stored goal applies.
	GoalStateEditing GoalFlowState = "editing"
	// GoalStateConfirming means a value was proposed and awaits confirmation.
	GoalStateConfirming GoalFlowState = "confirming"
)

// GoalFlowStatus is the external view of one user's goal edit.
type GoalFlowStatus struct {
	State         GoalFlowState `json:"state"`
	ProposedValue float64       `json:"proposed_value,omitempty"`
}

type goalEdit struct {
	state    GoalFlowState
	proposed float64
}

// GoalFlow implements the two-step goal update: a new value is first
// proposed, then either confirmed (committing it to the profile and
// recomputing the dashboard) or stepped back from, which keeps the value
// on screen for further editing. Nothing touches persistence until
// Confirm.
type GoalFlow struct {
	tracker *Tracker
	logger  *zap.Logger

	mu    sync.Mutex
	edits map[string]*goalEdit
}

// NewGoalFlow creates the goal confirmation flow on top of the tracker.
func NewGoalFlow(tracker *Tracker, logger *zap.Logger) *GoalFlow {
	return &GoalFlow{
		tracker: tracker,
		logger:  logger,
		edits:   make(map[string]*goalEdit),
	}
}

// Status reports the current step for a user. Users with no pending edit
// are in the editing state.
func (g *GoalFlow) Status(userID string) GoalFlowStatus {
	g.mu.Lock()
	defer g.mu.Unlock()

	edit, ok := g.edits[userID]
	if !ok {
		return GoalFlowStatus{State: GoalStateEditing}
	}
	return GoalFlowStatus{State: edit.state, ProposedValue: edit.proposed}
}

// Propose stages a new monthly goal value and moves to the confirming step.
func (g *GoalFlow) Propose(userID string, value float64) (GoalFlowStatus, error) {
	value = clampNumber(value)
	if value < 0 {
		return GoalFlowStatus{}, &domain.ErrValidation{Field: "monthly_goal", Message: "must not be negative"}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.edits[userID] = &goalEdit{state: GoalStateConfirming, proposed: value}
	return GoalFlowStatus{State: GoalStateConfirming, ProposedValue: value}, nil
}

// Confirm commits the proposed value to the profile. The tracker updates
// persistence and recomputes the dashboard before this returns; only then
// is the pending edit discarded.
func (g *GoalFlow) Confirm(ctx context.Context, userID string) (*domain.UserProfile, error) {
	g.mu.Lock()
	edit, ok := g.edits[userID]
	if !ok || edit.state != GoalStateConfirming {
		g.mu.Unlock()
		return nil, &domain.ErrConflict{Message: "no goal value pending confirmation"}
	}
	value := edit.proposed
	g.mu.Unlock()

	profile, err := g.tracker.UpdateProfile(ctx, userID, &domain.ProfileUpdate{MonthlyGoal: &value})
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	delete(g.edits, userID)
	g.mu.Unlock()

	g.logger.Info("monthly goal confirmed",
		zap.String("user_id", userID),
		zap.Float64("monthly_goal", value),
	)
	return profile, nil
}

// Back returns from the confirmation step to editing, keeping the proposed
// value so the user can adjust it instead of retyping.
func (g *GoalFlow) Back(userID string) (GoalFlowStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	edit, ok := g.edits[userID]
	if !ok || edit.state != GoalStateConfirming {
		return GoalFlowStatus{}, &domain.ErrConflict{Message: "no goal value pending confirmation"}
	}
	edit.state = GoalStateEditing
	return GoalFlowStatus{State: GoalStateEditing, ProposedValue: edit.proposed}, nil
}

// Cancel discards any pending edit. Safe to call in any state.
func (g *GoalFlow) Cancel(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.edits, userID)
}

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

// ProfileStore implements port.ProfileStore on the user_profiles table.
type ProfileStore struct {
	client *Client
}

// NewProfileStore creates the profile store on top of a shared client.
func NewProfileStore(client *Client) *ProfileStore {
	return &ProfileStore{client: client}
}

// profileRow maps user_profiles columns.
type profileRow struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	MonthlyGoal  float64 `json:"monthly_goal"`
	LicensePlate string  `json:"license_plate"`
	HasAccess    bool    `json:"has_access"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func (r *profileRow) toDomain() *domain.UserProfile {
	created, _ := time.Parse(time.RFC3339, r.CreatedAt)
	updated, _ := time.Parse(time.RFC3339, r.UpdatedAt)
	return &domain.UserProfile{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		MonthlyGoal:  r.MonthlyGoal,
		LicensePlate: r.LicensePlate,
		HasAccess:    r.HasAccess,
		CreatedAt:    created,
		UpdatedAt:    updated,
	}
}

// GetProfile fetches one driver profile by user id.
func (s *ProfileStore) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var profile *domain.UserProfile
	notFound := false

	err := s.client.execute(ctx, func() error {
		path := fmt.Sprintf("user_profiles?id=eq.%s&limit=1", url.QueryEscape(userID))
		body, err := s.client.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			notFound = true
			return nil
		}

		var rows []profileRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("failed to decode profile: %w", err)
		}
		if len(rows) == 0 {
			notFound = true
			return nil
		}
		profile = rows[0].toDomain()
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	if notFound {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID}
	}
	return profile, nil
}

// CreateProfile inserts a new driver profile.
func (s *ProfileStore) CreateProfile(ctx context.Context, profile *domain.UserProfile) (*domain.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateProfile")
	defer span.End()

	now := time.Now().Format(time.RFC3339)
	row := map[string]any{
		"id":            profile.ID,
		"name":          profile.Name,
		"email":         profile.Email,
		"monthly_goal":  profile.MonthlyGoal,
		"license_plate": profile.LicensePlate,
		"has_access":    profile.HasAccess,
		"created_at":    now,
		"updated_at":    now,
	}

	var created *domain.UserProfile
	err := s.client.execute(ctx, func() error {
		body, err := s.client.doPost(ctx, "user_profiles", row)
		if err != nil {
			return err
		}
		var rows []profileRow
		if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
			// PostgREST returned no representation; fall back to the input.
			created = profile
			return nil
		}
		created = rows[0].toDomain()
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	return created, nil
}

// UpdateProfile patches the given columns and returns the fresh row.
func (s *ProfileStore) UpdateProfile(ctx context.Context, userID string, updates map[string]any) (*domain.UserProfile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateProfile")
	defer span.End()

	updates["updated_at"] = time.Now().Format(time.RFC3339)

	err := s.client.execute(ctx, func() error {
		path := fmt.Sprintf("user_profiles?id=eq.%s", url.QueryEscape(userID))
		return s.client.doPatch(ctx, path, updates)
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}

	return s.GetProfile(ctx, userID)
}

// DeleteProfile removes the driver profile row.
func (s *ProfileStore) DeleteProfile(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteProfile")
	defer span.End()

	err := s.client.execute(ctx, func() error {
		path := fmt.Sprintf("user_profiles?id=eq.%s", url.QueryEscape(userID))
		return s.client.doDelete(ctx, path)
	})
	if err != nil {
		return &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fixitnow/fixitnow/internal/core/domain"
	"github.com/fixitnow/fixitnow/internal/core/ports"
)

// SeedSampleData inserts development sample users and service requests.
// Existing records are left untouched, so repeated startups are safe.
func SeedSampleData(ctx context.Context, users ports.UserStore, requests ports.RequestStore, logger zerolog.Logger) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	sampleUsers := []*domain.User{
		{Username: "john_homeowner", PasswordHash: string(hash), Role: domain.RoleHomeowner, CreatedAt: now},
		{Username: "jane_provider", PasswordHash: string(hash), Role: domain.RoleServiceProvider, CreatedAt: now},
	}
	for _, u := range sampleUsers {
		if _, err := users.Create(ctx, u); err != nil {
			if errors.Is(err, domain.ErrUserExists) {
				continue
			}
			return err
		}
		logger.Info().Str("username", u.Username).Str("role", u.Role).Msg("sample user seeded")
	}

	preferred1 := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	start1 := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)
	preferred2 := time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)
	sampleRequests := []*domain.ServiceRequest{
		{
			ID:              "service_001",
			Homeowner:       "john_homeowner",
			ServiceProvider: "jane_provider",
			ServiceType:     "plumbing",
			Priority:        "high",
			Description:     "Kitchen faucet is leaking from the base. Water dripping constantly.",
			PreferredDate:   &preferred1,
			StartDate:       &start1,
			Status:          domain.StatusInProgress,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ID:              "service_002",
			Homeowner:       "john_homeowner",
			ServiceProvider: "jane_provider",
			ServiceType:     "hvac",
			Priority:        "medium",
			Description:     "Regular maintenance check for AC unit before summer season.",
			PreferredDate:   &preferred2,
			Status:          domain.StatusScheduled,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}
	for _, r := range sampleRequests {
		if _, err := requests.Create(ctx, r); err != nil {
			if errors.Is(err, domain.ErrRequestExists) {
				continue
			}
			return err
		}
		logger.Info().Str("service_id", r.ID).Str("status", string(r.Status)).Msg("sample request seeded")
	}

	return nil
}

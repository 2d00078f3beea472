package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"selectclass/api"
	"selectclass/internal/auth"
	"selectclass/internal/models"
	"selectclass/internal/state"
	"selectclass/internal/storage/remote"
	"selectclass/pkg/response"
)

// Login checks the stored credentials, or the configured defaults when none
// are stored, and issues a session token.
func (s *Service) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	const op = "service.Login"

	creds := models.Credentials{User: s.opts.DefaultUser, Pass: s.opts.DefaultPass}

	var stored models.Credentials
	found, err := s.store.Get(ctx, remote.PathCredentials, &stored)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if found && stored.User != "" {
		creds = stored
	}

	if req.User != creds.User || !auth.CheckPassword(creds.Pass, req.Pass) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
	}

	token, exp, err := s.tokens.Issue(creds.User)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.notifier.Trigger()

	return &api.LoginResponse{Token: token, ExpiresAt: exp}, nil
}

// UpdateCredentials replaces the login with a bcrypt-hashed password.
func (s *Service) UpdateCredentials(ctx context.Context, req *api.CredentialsRequest) error {
	const op = "service.UpdateCredentials"

	user := strings.TrimSpace(req.User)
	if user == "" {
		return fmt.Errorf("%s: %w", op, response.Invalid("user", "is required"))
	}
	if len(req.Pass) < 4 {
		return fmt.Errorf("%s: %w", op, response.Invalid("pass", "must have at least 4 characters"))
	}

	hash, err := auth.HashPassword(req.Pass)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.Put(ctx, remote.PathCredentials, models.Credentials{User: user, Pass: hash}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Service) GetSettings() models.Settings {
	return s.state.Snapshot().Settings
}

var colorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func (s *Service) UpdateSettings(ctx context.Context, req *api.SettingsRequest) (*models.Settings, error) {
	const op = "service.UpdateSettings"

	next := s.state.Snapshot().Settings

	if req.Theme != nil {
		switch *req.Theme {
		case "light", "dark":
			next.Theme = *req.Theme
		default:
			return nil, fmt.Errorf("%s: %w", op, response.Invalid("theme", "must be light or dark"))
		}
	}

	if req.PrimaryColor != nil {
		if !colorRe.MatchString(*req.PrimaryColor) {
			return nil, fmt.Errorf("%s: %w", op, response.Invalid("primaryColor", "must be #RRGGBB"))
		}
		next.PrimaryColor = *req.PrimaryColor
	}

	if req.InstructorName != nil {
		name := strings.TrimSpace(*req.InstructorName)
		if name == "" {
			return nil, fmt.Errorf("%s: %w", op, response.Invalid("instructorName", "is required"))
		}
		next.InstructorName = name
	}

	if req.AnnualGoal != nil {
		if *req.AnnualGoal <= 0 {
			return nil, fmt.Errorf("%s: %w", op, response.Invalid("annualGoal", "must be greater than zero"))
		}
		next.AnnualGoal = *req.AnnualGoal
	}

	if err := s.store.Put(ctx, remote.PathSettings, next); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.published(func(sn *state.Snapshot) {
		sn.Settings = next
	})

	return &next, nil
}

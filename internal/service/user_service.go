package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"storefront-api/internal/auth"
	"storefront-api/internal/models"
	"storefront-api/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService manages profiles and role assignments
type UserService struct {
	users  UserRepository
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(users UserRepository) *UserService {
	return &UserService{
		users:  users,
		logger: util.GetLogger(),
	}
}

// ListUsers returns every profile with its roles, newest first
func (s *UserService) ListUsers(ctx context.Context) ([]models.UserWithRoles, error) {
	profiles, err := s.users.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", fromStore(err))
	}

	ids := make([]uuid.UUID, len(profiles))
	for i := range profiles {
		ids[i] = profiles[i].ID
	}
	roles, err := s.users.GetRolesForUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", fromStore(err))
	}

	users := make([]models.UserWithRoles, len(profiles))
	for i := range profiles {
		users[i] = models.UserWithRoles{Profile: profiles[i], Roles: nonNil(roles[profiles[i].ID])}
	}
	return users, nil
}

// GetUser returns one profile with its roles
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*models.UserWithRoles, error) {
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, fromStore(err)
	}
	roles, err := s.users.GetRoles(ctx, userID)
	if err != nil {
		return nil, fromStore(err)
	}
	return &models.UserWithRoles{Profile: *profile, Roles: nonNil(roles)}, nil
}

// Me returns the caller's profile and roles. A caller without a profile row
// gets the identity's id and email with the roles it holds.
func (s *UserService) Me(ctx context.Context, identity *auth.Identity) (*models.UserWithRoles, error) {
	roles, err := s.users.GetRoles(ctx, identity.UserID)
	if err != nil {
		return nil, fromStore(err)
	}

	profile, err := s.users.GetProfile(ctx, identity.UserID)
	if errors.Is(fromStore(err), ErrNotFound) {
		profile = &models.Profile{ID: identity.UserID, Email: identity.Email}
	} else if err != nil {
		return nil, fromStore(err)
	}

	return &models.UserWithRoles{Profile: *profile, Roles: nonNil(roles)}, nil
}

// UpdateMe applies self-service profile edits, creating the profile on first use
func (s *UserService) UpdateMe(ctx context.Context, identity *auth.Identity, patch models.ProfilePatch) (*models.Profile, error) {
	profile, err := s.users.UpsertProfile(ctx, identity.UserID, identity.Email, patch)
	if err != nil {
		return nil, fromStore(err)
	}
	return profile, nil
}

// SetRoles replaces the user's roles with the given set
func (s *UserService) SetRoles(ctx context.Context, userID uuid.UUID, roles []string) ([]string, error) {
	unique := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if role != models.RoleAdmin && role != models.RoleUser {
			return nil, invalid("unknown role %q", role)
		}
		unique[role] = struct{}{}
	}

	if _, err := s.users.GetProfile(ctx, userID); err != nil {
		return nil, fromStore(err)
	}

	normalized := make([]string, 0, len(unique))
	for role := range unique {
		normalized = append(normalized, role)
	}
	sort.Strings(normalized)

	if err := s.users.ReplaceRoles(ctx, userID, normalized); err != nil {
		return nil, fmt.Errorf("failed to replace roles: %w", fromStore(err))
	}

	s.logger.Info("User roles replaced",
		zap.String("user_id", userID.String()),
		zap.Strings("roles", normalized))
	return normalized, nil
}

// DeleteUser removes the user's profile, roles, cart and wishlist
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return fromStore(err)
	}
	s.logger.Info("User deleted", zap.String("user_id", userID.String()))
	return nil
}

// HasRole reports whether the user holds role
func (s *UserService) HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	return s.users.HasRole(ctx, userID, role)
}

func nonNil(roles []string) []string {
	if roles == nil {
		return []string{}
	}
	return roles
}

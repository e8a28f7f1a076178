package store

import (
	"context"

	"storefront-api/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const profileColumns = "id, email, full_name, phone, address, created_at, updated_at"

// ListProfiles returns every profile, newest first
func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	profiles := []models.Profile{}
	err := s.db.SelectContext(ctx, &profiles,
		"SELECT "+profileColumns+" FROM profiles ORDER BY created_at DESC")
	return profiles, translateError(err)
}

// GetProfile retrieves a profile by user ID
func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.GetContext(ctx, &profile,
		"SELECT "+profileColumns+" FROM profiles WHERE id = $1", userID)
	if err != nil {
		return nil, translateError(err)
	}
	return &profile, nil
}

// UpsertProfile writes the patch onto the user's profile, creating the row on first use
func (s *Store) UpsertProfile(ctx context.Context, userID uuid.UUID, email string, patch models.ProfilePatch) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (id, email, full_name, phone, address)
		VALUES ($1, $2, COALESCE($3, ''), COALESCE($4, ''), COALESCE($5, ''))
		ON CONFLICT (id) DO UPDATE SET
			full_name  = COALESCE($3, profiles.full_name),
			phone      = COALESCE($4, profiles.phone),
			address    = COALESCE($5, profiles.address),
			updated_at = NOW()
		RETURNING ` + profileColumns

	var profile models.Profile
	err := s.db.GetContext(ctx, &profile, query, userID, email, patch.FullName, patch.Phone, patch.Address)
	if err != nil {
		return nil, translateError(err)
	}
	return &profile, nil
}

// DeleteUser removes the profile together with the user's roles, cart and wishlist
func (s *Store) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, table := range []string{"user_roles", "carts", "wishlists"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE user_id = $1", userID); err != nil {
				return translateError(err)
			}
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM profiles WHERE id = $1", userID)
		if err != nil {
			return translateError(err)
		}
		return requireAffected(res)
	})
}

// HasRole reports whether the user holds the role
func (s *Store) HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)", userID, role)
	return exists, translateError(err)
}

// GetRoles returns the role labels of one user
func (s *Store) GetRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	roles := []string{}
	err := s.db.SelectContext(ctx, &roles,
		"SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role", userID)
	return roles, translateError(err)
}

// GetRolesForUsers returns role labels keyed by user ID
func (s *Store) GetRolesForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	result := make(map[uuid.UUID][]string, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In("SELECT user_id, role FROM user_roles WHERE user_id IN (?) ORDER BY role", userIDs)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		UserID uuid.UUID `db:"user_id"`
		Role   string    `db:"role"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, translateError(err)
	}
	for _, row := range rows {
		result[row.UserID] = append(result[row.UserID], row.Role)
	}
	return result, nil
}

// ReplaceRoles swaps the user's roles for the given set atomically
func (s *Store) ReplaceRoles(ctx context.Context, userID uuid.UUID, roles []string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM user_roles WHERE user_id = $1", userID); err != nil {
			return translateError(err)
		}
		for _, role := range roles {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT (user_id, role) DO NOTHING",
				userID, role); err != nil {
				return translateError(err)
			}
		}
		return nil
	})
}

package store

import (
	"context"
)

// GetSetting returns the value stored under key
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = $1", key)
	if err != nil {
		return "", translateError(err)
	}
	return value, nil
}

// PutSetting creates or overwrites a setting
func (s *Store) PutSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	return translateError(err)
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"farmfinance/backend/models"
)

const settingColumns = `id, setting_key, value, category, description, is_public, last_updated_by, created_at, updated_at`

func scanSetting(row rowScanner) (models.Setting, error) {
	var (
		st    models.Setting
		value string
	)
	err := row.Scan(&st.ID, &st.Key, &value, &st.Category, &st.Description, &st.IsPublic, &st.LastUpdatedBy,
		&st.CreatedAt, &st.UpdatedAt)
	st.Value = json.RawMessage(value)
	return st, err
}

func (s *Store) selectSettings(ctx context.Context, query string, args ...interface{}) ([]models.Setting, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	settings := []models.Setting{}
	for rows.Next() {
		st, err := scanSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

// ListSettings returns every setting ordered by category then key.
func (s *Store) ListSettings(ctx context.Context) ([]models.Setting, error) {
	return s.selectSettings(ctx, `SELECT `+settingColumns+` FROM settings ORDER BY category, setting_key`)
}

func (s *Store) ListPublicSettings(ctx context.Context) ([]models.Setting, error) {
	return s.selectSettings(ctx, `SELECT `+settingColumns+` FROM settings WHERE is_public = ? ORDER BY setting_key`, true)
}

func (s *Store) GetSetting(ctx context.Context, key string) (models.Setting, error) {
	st, err := scanSetting(s.queryRow(ctx, `SELECT `+settingColumns+` FROM settings WHERE setting_key = ?`, key))
	if err != nil {
		return st, notFound(err, "get setting "+key)
	}
	return st, nil
}

// UpsertSetting inserts st or replaces the row with the same key.
func (s *Store) UpsertSetting(ctx context.Context, st *models.Setting) error {
	existing, err := s.GetSetting(ctx, st.Key)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return s.insertSetting(ctx, st)
	case err != nil:
		return err
	}

	st.ID = existing.ID
	st.CreatedAt = existing.CreatedAt
	st.UpdatedAt = s.timestamp()
	_, err = s.exec(ctx, `UPDATE settings SET value = ?, category = ?, description = ?, is_public = ?,
		last_updated_by = ?, updated_at = ? WHERE id = ?`,
		string(st.Value), st.Category, st.Description, st.IsPublic, st.LastUpdatedBy, st.UpdatedAt, st.ID)
	if err != nil {
		return fmt.Errorf("update setting %s: %w", st.Key, err)
	}
	return nil
}

// InsertSettingIfMissing creates st unless its key already exists.
// It reports whether a row was created.
func (s *Store) InsertSettingIfMissing(ctx context.Context, st *models.Setting) (bool, error) {
	_, err := s.GetSetting(ctx, st.Key)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return false, err
	}
	if err := s.insertSetting(ctx, st); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) insertSetting(ctx context.Context, st *models.Setting) error {
	if st.ID == "" {
		st.ID = newID()
	}
	if st.Category == "" {
		st.Category = models.SettingSystem
	}
	now := s.timestamp()
	st.CreatedAt, st.UpdatedAt = now, now

	_, err := s.exec(ctx, `INSERT INTO settings (`+settingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.Key, string(st.Value), st.Category, st.Description, st.IsPublic, st.LastUpdatedBy,
		st.CreatedAt, st.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("insert setting %s: %w", st.Key, models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert setting %s: %w", st.Key, err)
	}
	return nil
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"farmfinance/backend/logger"
	"farmfinance/backend/models"
	"farmfinance/backend/store"
)

// SettingEnableRegistration gates self-service sign-up.
const SettingEnableRegistration = "enableUserRegistration"

// SettingEntry is a setting as listed in the admin grouping.
type SettingEntry struct {
	Key         string          `json:"key"`
	Value       json.RawMessage `json:"value"`
	Description string          `json:"description,omitempty"`
	IsPublic    bool            `json:"isPublic"`
	UpdatedAt   string          `json:"updatedAt"`
}

// UpdatedSetting is one line of the bulk update report.
type UpdatedSetting struct {
	Key     string          `json:"key"`
	Value   json.RawMessage `json:"value"`
	Updated bool            `json:"updated"`
}

type SettingsService struct {
	store *store.Store
}

func NewSettingsService(s *store.Store) *SettingsService {
	return &SettingsService{store: s}
}

// EnsureDefaults inserts every default setting that does not exist yet and
// returns how many were created. Existing values are left alone.
func (s *SettingsService) EnsureDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, def := range models.DefaultSettings() {
		def := def
		ok, err := s.store.InsertSettingIfMissing(ctx, &def)
		if err != nil {
			return created, fmt.Errorf("seed setting %s: %w", def.Key, err)
		}
		if ok {
			created++
		}
	}
	log := logger.FromContext(ctx)
	log.Info().Int("created", created).Msg("Default settings ensured")
	return created, nil
}

// Public returns the public settings as a key/value object.
func (s *SettingsService) Public(ctx context.Context) (map[string]json.RawMessage, error) {
	settings, err := s.store.ListPublicSettings(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(settings))
	for _, st := range settings {
		out[st.Key] = st.Value
	}
	return out, nil
}

// Grouped returns every setting grouped by category.
func (s *SettingsService) Grouped(ctx context.Context) (map[string][]SettingEntry, error) {
	settings, err := s.store.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	out := map[string][]SettingEntry{}
	for _, st := range settings {
		out[st.Category] = append(out[st.Category], SettingEntry{
			Key:         st.Key,
			Value:       st.Value,
			Description: st.Description,
			IsPublic:    st.IsPublic,
			UpdatedAt:   st.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out, nil
}

// Update upserts each entry on behalf of actorID. Entries without a key or
// a value are skipped. Invalid entries fail the whole request before
// anything is written.
func (s *SettingsService) Update(ctx context.Context, actorID string, updates []models.SettingUpdate) ([]UpdatedSetting, error) {
	for _, u := range updates {
		if u.Skip() {
			continue
		}
		if err := u.Validate(); err != nil {
			return nil, err
		}
	}

	updated := []UpdatedSetting{}
	for _, u := range updates {
		if u.Skip() {
			continue
		}

		st, err := s.store.GetSetting(ctx, strings.TrimSpace(u.Key))
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return updated, err
		}
		u.ApplyTo(&st)
		st.LastUpdatedBy = actorID

		if err := s.store.UpsertSetting(ctx, &st); err != nil {
			return updated, err
		}
		updated = append(updated, UpdatedSetting{Key: st.Key, Value: st.Value, Updated: true})
	}

	log := logger.FromContext(ctx)
	log.Info().Str("actor", actorID).Int("updated", len(updated)).Msg("Settings updated")
	return updated, nil
}

// Bool reads a boolean setting, returning fallback when it is missing or not a boolean.
func (s *SettingsService) Bool(ctx context.Context, key string, fallback bool) bool {
	st, err := s.store.GetSetting(ctx, key)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			log := logger.FromContext(ctx)
			log.Warn().Err(err).Str("key", key).Msg("Failed to read setting")
		}
		return fallback
	}
	var v bool
	if err := json.Unmarshal(st.Value, &v); err != nil {
		return fallback
	}
	return v
}

package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Setting is one site-wide key/value pair. Value holds arbitrary JSON.
type Setting struct {
	ID            string          `json:"id"`
	Key           string          `json:"key"`
	Value         json.RawMessage `json:"value"`
	Category      string          `json:"category"`
	Description   string          `json:"description,omitempty"`
	IsPublic      bool            `json:"isPublic"`
	LastUpdatedBy string          `json:"lastUpdatedBy,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// SettingUpdate is one entry of a bulk upsert.
type SettingUpdate struct {
	Key         string          `json:"key"`
	Value       json.RawMessage `json:"value"`
	Description *string         `json:"description"`
	Category    *string         `json:"category"`
	IsPublic    *bool           `json:"isPublic"`
}

// Skip reports whether the entry lacks a key or a value. Such entries are ignored.
func (u SettingUpdate) Skip() bool {
	return strings.TrimSpace(u.Key) == "" || len(u.Value) == 0 || string(u.Value) == "null"
}

func (u SettingUpdate) Validate() error {
	v := NewValidationError()
	checkEnum(v, "category", u.Category, SettingGroups)
	if len(u.Value) > 0 && !json.Valid(u.Value) {
		v.Add("value", "Value must be valid JSON")
	}
	return v.Err()
}

// ApplyTo writes the entry onto s, keeping existing metadata where the entry is silent.
func (u SettingUpdate) ApplyTo(s *Setting) {
	s.Key = strings.TrimSpace(u.Key)
	s.Value = u.Value
	if u.Description != nil {
		s.Description = *u.Description
	}
	if u.Category != nil {
		s.Category = *u.Category
	}
	if s.Category == "" {
		s.Category = SettingSystem
	}
	if u.IsPublic != nil {
		s.IsPublic = *u.IsPublic
	}
}

// DefaultSettings are seeded at startup when absent.
func DefaultSettings() []Setting {
	raw := func(v interface{}) json.RawMessage {
		b, _ := json.Marshal(v)
		return b
	}
	return []Setting{
		{Key: "siteTitle", Value: raw("Farm Finance"), Category: SettingSystem, Description: "Website title", IsPublic: true},
		{Key: "defaultCurrency", Value: raw("USD"), Category: SettingFinance, Description: "Default currency for new users", IsPublic: true},
		{Key: "defaultLanguage", Value: raw("en"), Category: SettingSystem, Description: "Default language", IsPublic: true},
		{Key: "enableUserRegistration", Value: raw(true), Category: SettingSystem, Description: "Allow new user registrations"},
		{Key: "enableEmailNotifications", Value: raw(true), Category: SettingNotification, Description: "Enable system email notifications"},
		{Key: "dataRetentionDays", Value: raw(365), Category: SettingSystem, Description: "Number of days to retain user data"},
		{Key: "maintenanceMode", Value: raw(false), Category: SettingSystem, Description: "Enable maintenance mode", IsPublic: true},
	}
}

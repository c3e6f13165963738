package models

import "time"

// SettingsID is the key of the Settings singleton row.
const SettingsID = "default"

// Settings is the per-device settings singleton
type Settings struct {
	Language             string    `json:"language"`
	SoundEnabled         bool      `json:"soundEnabled"`
	NotificationsEnabled bool      `json:"notificationsEnabled"`
	Theme                string    `json:"theme"`
	AutoSave             bool      `json:"autoSave"`
	OfflineMode          bool      `json:"offlineMode"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// DefaultSettings returns the documented settings defaults
func DefaultSettings() Settings {
	return Settings{
		Language:             "en",
		SoundEnabled:         true,
		NotificationsEnabled: true,
		Theme:                "light",
		AutoSave:             true,
		OfflineMode:          true,
	}
}

// SettingsPatch is a partial update of Settings; nil fields are unchanged
type SettingsPatch struct {
	Language             *string `json:"language,omitempty"`
	SoundEnabled         *bool   `json:"soundEnabled,omitempty"`
	NotificationsEnabled *bool   `json:"notificationsEnabled,omitempty"`
	Theme                *string `json:"theme,omitempty"`
	AutoSave             *bool   `json:"autoSave,omitempty"`
	OfflineMode          *bool   `json:"offlineMode,omitempty"`
}

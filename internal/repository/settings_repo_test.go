package repository

import (
	"testing"

	"stemquest/internal/models"
)

func boolPtr(b bool) *bool { return &b }

func TestSettingsSaveDefaults(t *testing.T) {
	db := newTestDB(t)
	repo := NewSettingsRepository(db)

	settings, err := repo.Save(&models.SettingsPatch{})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	defaults := models.DefaultSettings()
	if settings.Language != defaults.Language {
		t.Errorf("Expected language %q, got %q", defaults.Language, settings.Language)
	}
	if settings.Theme != defaults.Theme {
		t.Errorf("Expected theme %q, got %q", defaults.Theme, settings.Theme)
	}
	if !settings.SoundEnabled || !settings.AutoSave || !settings.OfflineMode {
		t.Error("Expected boolean defaults to be on")
	}
}

func TestSettingsSaveMerges(t *testing.T) {
	db := newTestDB(t)
	repo := NewSettingsRepository(db)

	theme := "dark"
	if _, err := repo.Save(&models.SettingsPatch{Theme: &theme}); err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	settings, err := repo.Save(&models.SettingsPatch{SoundEnabled: boolPtr(false)})
	if err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	if settings.Theme != "dark" {
		t.Errorf("Expected theme preserved across saves, got %q", settings.Theme)
	}
	if settings.SoundEnabled {
		t.Error("Expected sound disabled")
	}

	loaded, err := repo.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded == nil || loaded.Theme != "dark" || loaded.SoundEnabled {
		t.Errorf("Stored settings do not match: %+v", loaded)
	}
}

func TestSettingsReset(t *testing.T) {
	db := newTestDB(t)
	repo := NewSettingsRepository(db)

	theme := "dark"
	if _, err := repo.Save(&models.SettingsPatch{Theme: &theme}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	settings, err := repo.Get()
	if err != nil {
		t.Fatalf("Get after reset failed: %v", err)
	}
	if settings != nil {
		t.Errorf("Expected no settings after reset, got %+v", settings)
	}
}

func TestPreferences(t *testing.T) {
	db := newTestDB(t)
	repo := NewSettingsRepository(db)

	if err := repo.SetPreference("onboarding_done", "yes"); err != nil {
		t.Fatalf("SetPreference failed: %v", err)
	}

	value, ok, err := repo.GetPreference("onboarding_done")
	if err != nil {
		t.Fatalf("GetPreference failed: %v", err)
	}
	if !ok || value != "yes" {
		t.Errorf("Expected yes, got %q (ok=%v)", value, ok)
	}

	// Upsert replaces the value
	if err := repo.SetPreference("onboarding_done", "no"); err != nil {
		t.Fatalf("Second SetPreference failed: %v", err)
	}
	value, ok, err = repo.GetPreference("onboarding_done")
	if err != nil {
		t.Fatalf("GetPreference failed: %v", err)
	}
	if !ok || value != "no" {
		t.Errorf("Expected no after upsert, got %q", value)
	}

	_, ok, err = repo.GetPreference("never-set")
	if err != nil {
		t.Fatalf("GetPreference failed: %v", err)
	}
	if ok {
		t.Error("Expected absent key to report ok=false")
	}

	if err := repo.DeletePreference("onboarding_done"); err != nil {
		t.Fatalf("DeletePreference failed: %v", err)
	}
	_, ok, _ = repo.GetPreference("onboarding_done")
	if ok {
		t.Error("Expected key gone after delete")
	}
}

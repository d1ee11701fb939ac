package service

import (
	"context"
	"errors"
	"testing"

	"PintellAPI/internal/models"
)

func TestSettingsService_GetDefaults(t *testing.T) {
	svc := NewSettingsService(&fakeSettingsRepo{}, 0)

	s, err := svc.Get(context.Background(), "newbie")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if s.BatteryNotifications || s.MoistureNotifications || s.SelectedBatteryTags == nil {
		t.Errorf("Expected disabled defaults with empty tags, got %+v", s)
	}

	if _, err := svc.Lookup("newbie"); err == nil {
		t.Error("Expected Lookup to report missing settings")
	}
}

func TestSettingsService_UpdateAndLookup(t *testing.T) {
	repo := &fakeSettingsRepo{}
	svc := NewSettingsService(repo, 0)

	in := &models.NotificationSettings{
		BatteryNotifications:  true,
		SelectedBatteryTags:   []string{"100%", "20%"},
		MoistureNotifications: true,
		SelectedMoistureTags:  []string{"0-2%"},
	}
	if err := svc.Update(context.Background(), "alice", in); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := svc.Lookup("alice")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !got.BatteryNotifications || len(got.SelectedBatteryTags) != 2 || got.SelectedMoistureTags[0] != "0-2%" {
		t.Errorf("Unexpected settings: %+v", got)
	}
}

func TestSettingsService_UpdateValidation(t *testing.T) {
	svc := NewSettingsService(&fakeSettingsRepo{}, 0)

	tests := []struct {
		name     string
		username string
		settings models.NotificationSettings
	}{
		{"no username", "", models.NotificationSettings{}},
		{"battery without number", "alice", models.NotificationSettings{SelectedBatteryTags: []string{"low"}}},
		{"battery above 100", "alice", models.NotificationSettings{SelectedBatteryTags: []string{"120%"}}},
		{"moisture without number", "alice", models.NotificationSettings{SelectedMoistureTags: []string{"dry"}}},
		{"moisture above 100", "alice", models.NotificationSettings{SelectedMoistureTags: []string{"90-110%"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Update(context.Background(), tt.username, &tt.settings)
			if !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Expected ErrInvalidSettings, got %v", err)
			}
		})
	}
}

func TestSettingsService_RepoError(t *testing.T) {
	svc := NewSettingsService(&fakeSettingsRepo{err: errors.New("db down")}, 0)

	if _, err := svc.Get(context.Background(), "alice"); err == nil {
		t.Error("Expected repository error from Get")
	}
}

package profile

import (
	"testing"

	"github.com/techtrail/techtrail/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	kv, err := store.New(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return kv
}

func TestLoginLogout(t *testing.T) {
	kv := testStore(t)

	if s := LoadSession(kv); s.LoggedIn {
		t.Fatal("fresh store should start logged out")
	}

	if err := Login(kv, "alice", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	s := LoadSession(kv)
	if !s.LoggedIn || s.Username != "alice" {
		t.Errorf("session after login = %+v", s)
	}

	if err := Logout(kv); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	s = LoadSession(kv)
	if s.LoggedIn || s.Username != "" {
		t.Errorf("session after logout = %+v", s)
	}
}

func TestLoginRejectsEmptyCredentials(t *testing.T) {
	kv := testStore(t)

	if err := Login(kv, "", "secret"); err == nil {
		t.Error("empty username accepted")
	}
	if err := Login(kv, "   ", "secret"); err == nil {
		t.Error("whitespace username accepted")
	}
	if err := Login(kv, "alice", ""); err == nil {
		t.Error("empty password accepted")
	}
	if s := LoadSession(kv); s.LoggedIn {
		t.Error("rejected login left session state behind")
	}
}

func TestLoginTrimsUsername(t *testing.T) {
	kv := testStore(t)
	if err := Login(kv, "  bob  ", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if s := LoadSession(kv); s.Username != "bob" {
		t.Errorf("username = %q, want bob", s.Username)
	}
}

func TestSettingsDefaults(t *testing.T) {
	kv := testStore(t)
	s := LoadSettings(kv)
	if s.Theme != "dark" {
		t.Errorf("default theme = %q, want dark", s.Theme)
	}
	if !s.Notifications {
		t.Error("notifications should default on")
	}
}

func TestSaveTheme(t *testing.T) {
	kv := testStore(t)

	if err := SaveTheme(kv, "light"); err != nil {
		t.Fatalf("SaveTheme: %v", err)
	}
	if s := LoadSettings(kv); s.Theme != "light" {
		t.Errorf("theme = %q, want light", s.Theme)
	}

	if err := SaveTheme(kv, "solarized"); err == nil {
		t.Error("unknown theme accepted")
	}
	if s := LoadSettings(kv); s.Theme != "light" {
		t.Errorf("rejected theme overwrote setting: %q", s.Theme)
	}
}

func TestSaveNotifications(t *testing.T) {
	kv := testStore(t)

	if err := SaveNotifications(kv, false); err != nil {
		t.Fatalf("SaveNotifications: %v", err)
	}
	if s := LoadSettings(kv); s.Notifications {
		t.Error("notifications still on after saving off")
	}

	if err := SaveNotifications(kv, true); err != nil {
		t.Fatalf("SaveNotifications: %v", err)
	}
	if s := LoadSettings(kv); !s.Notifications {
		t.Error("notifications still off after saving on")
	}
}

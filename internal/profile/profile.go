// Package profile gives the flat storage namespace's session and settings
// keys a typed face with an explicit load/save lifecycle, instead of
// string-keyed access scattered across call sites.
package profile

import (
	"fmt"
	"strings"

	"github.com/techtrail/techtrail/internal/store"
)

// Session is the local login state. Login accepts any non-empty
// credentials: there is no server and nothing to verify against.
type Session struct {
	LoggedIn bool
	Username string
}

// Settings holds user preferences.
type Settings struct {
	Theme         string // dark or light
	Notifications bool
}

// LoadSession reads the session keys from storage.
func LoadSession(kv *store.Store) Session {
	return Session{
		LoggedIn: kv.ReadString(store.KeyIsLoggedIn, "") == "true",
		Username: kv.ReadString(store.KeyUsername, ""),
	}
}

// Login validates credentials (non-empty is all it takes) and persists the
// session flags.
func Login(kv *store.Store, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return fmt.Errorf("profile: username and password must be non-empty")
	}
	if err := kv.Write(store.KeyIsLoggedIn, "true"); err != nil {
		return err
	}
	return kv.Write(store.KeyUsername, strings.TrimSpace(username))
}

// Logout clears the session flags.
func Logout(kv *store.Store) error {
	if err := kv.Delete(store.KeyIsLoggedIn); err != nil {
		return err
	}
	return kv.Delete(store.KeyUsername)
}

// LoadSettings reads preferences, defaulting to the dark theme with
// notifications on.
func LoadSettings(kv *store.Store) Settings {
	return Settings{
		Theme:         kv.ReadString(store.KeyTheme, "dark"),
		Notifications: kv.ReadString(store.KeyNotifications, "true") == "true",
	}
}

// SaveTheme persists the theme preference.
func SaveTheme(kv *store.Store, theme string) error {
	if theme != "dark" && theme != "light" {
		return fmt.Errorf("profile: invalid theme %q (want dark or light)", theme)
	}
	return kv.Write(store.KeyTheme, theme)
}

// SaveNotifications persists the notifications toggle.
func SaveNotifications(kv *store.Store, enabled bool) error {
	if enabled {
		return kv.Write(store.KeyNotifications, "true")
	}
	return kv.Write(store.KeyNotifications, "false")
}

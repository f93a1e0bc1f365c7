package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoginWithFlags(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := execTT(t, "login", "-c", cfg, "-u", "alice", "-p", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Logged in as alice") {
		t.Errorf("login output = %q", out)
	}

	out, _ = execTT(t, "whoami", "-c", cfg)
	if !strings.Contains(out, "Logged in as alice") {
		t.Errorf("whoami output = %q", out)
	}
}

func TestLoginPromptsForUsername(t *testing.T) {
	cfg := writeTestConfig(t)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader("bob\n"))
	cmd.SetArgs([]string{"login", "-c", cfg, "-p", "secret"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out.String(), "Username: ") {
		t.Errorf("no prompt shown: %q", out.String())
	}
	if !strings.Contains(out.String(), "Logged in as bob") {
		t.Errorf("login output = %q", out.String())
	}
}

func TestLoginRejectsEmptyCredentials(t *testing.T) {
	cfg := writeTestConfig(t)
	if _, err := execTT(t, "login", "-c", cfg, "-u", "   ", "-p", "secret"); err == nil {
		t.Error("blank username accepted")
	}
}

func TestLogout(t *testing.T) {
	cfg := writeTestConfig(t)

	if _, err := execTT(t, "login", "-c", cfg, "-u", "alice", "-p", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	out, err := execTT(t, "logout", "-c", cfg)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if !strings.Contains(out, "Logged out.") {
		t.Errorf("logout output = %q", out)
	}

	out, _ = execTT(t, "whoami", "-c", cfg)
	if !strings.Contains(out, "Not logged in.") {
		t.Errorf("whoami after logout = %q", out)
	}
}

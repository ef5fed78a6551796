package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBootstrapAdminCreatesOnce(t *testing.T) {
	users := newFakeUserRepo()
	passwordPath := filepath.Join(t.TempDir(), "admin.secret")
	cfg := Config{BootstrapAdminEnabled: true, InitialAdminPasswordPath: passwordPath}
	ctx := context.Background()

	if err := BootstrapAdmin(ctx, users, cfg); err != nil {
		t.Fatalf("BootstrapAdmin error: %v", err)
	}
	u, err := users.FindByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if u.Role != "ADMIN" {
		t.Fatalf("role = %q, want ADMIN", u.Role)
	}

	data, err := os.ReadFile(passwordPath)
	if err != nil {
		t.Fatalf("password file: %v", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		t.Fatal("password file is empty")
	}

	// Second run is a no-op.
	if err := BootstrapAdmin(ctx, users, cfg); err != nil {
		t.Fatalf("second BootstrapAdmin error: %v", err)
	}
	if users.createCalls != 1 {
		t.Fatalf("createCalls = %d, want 1", users.createCalls)
	}
}

func TestBootstrapAdminDisabled(t *testing.T) {
	users := newFakeUserRepo()
	if err := BootstrapAdmin(context.Background(), users, Config{BootstrapAdminEnabled: false}); err != nil {
		t.Fatalf("BootstrapAdmin error: %v", err)
	}
	if users.createCalls != 0 {
		t.Fatalf("createCalls = %d, want 0", users.createCalls)
	}
}

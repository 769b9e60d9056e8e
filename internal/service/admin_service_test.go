package service

import (
	"errors"
	"testing"

	"github.com/modboard-next/internal/config"
	"github.com/modboard-next/internal/store"
)

func setupAdminServiceTest(t *testing.T) (*AdminService, store.Store) {
	t.Helper()
	cfg := &config.Config{
		JWT: config.JWTConfig{SecretKey: "unit-test-secret-key-0123456789abcdef"},
	}
	db := store.NewMemoryStore()
	auth := NewAuthService(cfg, db)
	return NewAdminService(db, auth), db
}

func TestAdminRegisterAndGet(t *testing.T) {
	admins, db := setupAdminServiceTest(t)

	registered, err := admins.Register(AdminRegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if registered.ID == "" {
		t.Fatalf("expected assigned id")
	}
	if registered.RegistrationDate == "" {
		t.Fatalf("expected registration date")
	}

	got, err := admins.Get(registered.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Username != "alice" || got.Email != "alice@example.com" {
		t.Fatalf("unexpected admin view: %+v", got)
	}

	// 密码只以哈希形式落库，不得与明文相同
	doc, err := db.FindOne("admins", registered.ID)
	if err != nil {
		t.Fatalf("raw lookup failed: %v", err)
	}
	if doc["password"] == "s3cret-pass" {
		t.Fatalf("password stored in plaintext")
	}
	if doc["password"] == "" || doc["password"] == nil {
		t.Fatalf("password hash missing")
	}
}

func TestAdminRegisterDuplicate(t *testing.T) {
	admins, _ := setupAdminServiceTest(t)

	if _, err := admins.Register(AdminRegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err := admins.Register(AdminRegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "s3cret-pass",
	})
	if !errors.Is(err, ErrUsernameEmailInUse) {
		t.Fatalf("duplicate username: expected ErrUsernameEmailInUse, got %v", err)
	}

	_, err = admins.Register(AdminRegisterInput{
		Username: "bob",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	})
	if !errors.Is(err, ErrUsernameEmailInUse) {
		t.Fatalf("duplicate email: expected ErrUsernameEmailInUse, got %v", err)
	}
}

func TestAdminGetUnknown(t *testing.T) {
	admins, _ := setupAdminServiceTest(t)

	if _, err := admins.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAdminList(t *testing.T) {
	admins, _ := setupAdminServiceTest(t)

	list, err := admins.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}

	for _, name := range []string{"alice", "bob"} {
		if _, err := admins.Register(AdminRegisterInput{
			Username: name,
			Email:    name + "@example.com",
			Password: "s3cret-pass",
		}); err != nil {
			t.Fatalf("register %s failed: %v", name, err)
		}
	}

	list, err = admins.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 admins, got %d", len(list))
	}
}

func TestAdminDelete(t *testing.T) {
	admins, _ := setupAdminServiceTest(t)

	registered, err := admins.Register(AdminRegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := admins.Delete(registered.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := admins.Get(registered.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := admins.Delete(registered.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should report ErrNotFound, got %v", err)
	}
}

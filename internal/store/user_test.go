package store

import (
	"testing"

	"github.com/google/uuid"

	"storepress/internal/models"
)

func TestUserStoreCreateAndAuth(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "user-" + uuid.NewString()[:8] + "@test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	u, err := s.Create(email, "correct horse", "Test User", models.RoleEditor)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if u.TOTPEnabled {
		t.Error("new users should not have 2FA enabled")
	}
	if !u.Needs2FASetup() {
		t.Error("new users must be prompted for 2FA setup")
	}

	found, err := s.FindByEmail(email)
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if found == nil {
		t.Fatal("expected user, got nil")
	}

	if !s.CheckPassword(found, "correct horse") {
		t.Error("correct password rejected")
	}
	if s.CheckPassword(found, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestUserStoreTOTPLifecycle(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	email := "totp-" + uuid.NewString()[:8] + "@test.local"
	t.Cleanup(func() { cleanUsers(t, db, email) })

	u, err := s.Create(email, "password123", "TOTP User", models.RoleAdmin)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.SetTOTPSecret(u.ID, "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("SetTOTPSecret: %v", err)
	}
	if err := s.EnableTOTP(u.ID); err != nil {
		t.Fatalf("EnableTOTP: %v", err)
	}

	found, _ := s.FindByID(u.ID)
	if found.TOTPSecret == nil || *found.TOTPSecret != "JBSWY3DPEHPK3PXP" {
		t.Error("secret not stored")
	}
	if !found.TOTPEnabled {
		t.Error("expected 2FA enabled")
	}
	if found.Needs2FASetup() {
		t.Error("enrolled user should not need setup")
	}

	if err := s.ResetTOTP(u.ID); err != nil {
		t.Fatalf("ResetTOTP: %v", err)
	}
	found, _ = s.FindByID(u.ID)
	if found.TOTPSecret != nil || found.TOTPEnabled {
		t.Error("reset should clear enrollment")
	}
}

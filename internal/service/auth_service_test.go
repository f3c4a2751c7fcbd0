package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nurpe/sales-crm/internal/auth"
	"github.com/nurpe/sales-crm/internal/model"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	dbi := setupDB(t)
	tokens := auth.NewManager("test-secret", 15*time.Minute, 24*time.Hour)
	return NewAuthService(dbi, tokens)
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Username: "zhang.san",
		Email:    "zhang.san@example.com",
		Password: "s3cret-pass",
		RealName: "Zhang San",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != model.RoleUser {
		t.Errorf("role = %q, want default user", user.Role)
	}
	if user.PasswordHash == "s3cret-pass" {
		t.Fatal("password stored in plain text")
	}

	logged, pair, err := svc.Login(ctx, "zhang.san", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID {
		t.Errorf("logged in user = %d, want %d", logged.ID, user.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("token pair incomplete")
	}
	if logged.LastLogin == nil {
		t.Error("last login not stamped")
	}

	// Login also works by email.
	if _, _, err := svc.Login(ctx, "zhang.san@example.com", "s3cret-pass"); err != nil {
		t.Errorf("login by email: %v", err)
	}
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "", Email: "not-an-email", Password: "short"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	fields := make(map[string]bool, len(verr.Fields))
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{"username", "email", "password"} {
		if !fields[want] {
			t.Errorf("missing field error %q in %v", want, verr.Fields)
		}
	}
}

func TestAuthServiceRegisterDuplicates(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	input := RegisterInput{Username: "li.si", Email: "li.si@example.com", Password: "s3cret-pass"}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Register(ctx, input); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate username err = %v, want ErrConflict", err)
	}

	input.Username = "li.si.2"
	if _, err := svc.Register(ctx, input); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate email err = %v, want ErrConflict", err)
	}
}

func TestAuthServiceLoginBadCredentials(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		Username: "wang.wu", Email: "wang.wu@example.com", Password: "s3cret-pass",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "wang.wu", "wrong"); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("bad password err = %v, want ErrPermissionDenied", err)
	}
	if _, _, err := svc.Login(ctx, "nobody", "whatever"); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("unknown login err = %v, want ErrPermissionDenied", err)
	}
}

func TestAuthServiceRefresh(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		Username: "zhao.liu", Email: "zhao.liu@example.com", Password: "s3cret-pass",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, pair, err := svc.Login(ctx, "zhao.liu", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if fresh.AccessToken == "" || fresh.RefreshToken == "" {
		t.Fatal("refreshed pair incomplete")
	}

	// Access tokens are not accepted as refresh tokens.
	if _, err := svc.Refresh(ctx, pair.AccessToken); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("refresh with access token err = %v, want ErrPermissionDenied", err)
	}
	if _, err := svc.Refresh(ctx, "garbage"); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("refresh with garbage err = %v, want ErrPermissionDenied", err)
	}
}

func TestAuthServiceChangePassword(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Username: "sun.qi", Email: "sun.qi@example.com", Password: "old-secret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.ChangePassword(ctx, user.ID, "wrong", "new-secret"); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("wrong old password err = %v, want ErrPermissionDenied", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "old-secret", "tiny"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("short password err = %v, want ErrInvalidInput", err)
	}

	if err := svc.ChangePassword(ctx, user.ID, "old-secret", "new-secret"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, _, err := svc.Login(ctx, "sun.qi", "old-secret"); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("old password still accepted")
	}
	if _, _, err := svc.Login(ctx, "sun.qi", "new-secret"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}

func TestAuthServiceUpdateProfile(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Username: "zhou.ba", Email: "zhou.ba@example.com", Password: "s3cret-pass", RealName: "Zhou Ba",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	phone := "13800138000"
	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{Phone: &phone})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Phone != phone {
		t.Errorf("phone = %q, want %q", updated.Phone, phone)
	}
	// Fields left nil are untouched.
	if updated.RealName != "Zhou Ba" {
		t.Errorf("real name = %q, want Zhou Ba", updated.RealName)
	}

	if _, err := svc.UpdateProfile(ctx, 9999, UpdateProfileInput{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing err = %v, want ErrNotFound", err)
	}
}

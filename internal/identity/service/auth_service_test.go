package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"employee-management/backend/internal/audit"
	"employee-management/backend/internal/platform/errs"
	principaldomain "employee-management/backend/internal/principal/domain"
	"employee-management/backend/internal/security"
	telemetrydomain "employee-management/backend/internal/telemetry/domain"
)

type authFixture struct {
	svc        *AuthService
	principals *memPrincipalRepo
	profiles   *memEmployeeRepo
	sessions   *memSessionRepo
	audit      *recordingAudit
	events     chanEmitter
	hasher     *security.Hasher
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	f := &authFixture{
		principals: newMemPrincipalRepo(),
		profiles:   newMemEmployeeRepo(),
		sessions:   newMemSessionRepo(),
		audit:      &recordingAudit{},
		events:     make(chanEmitter, 16),
		hasher:     security.NewHasher(4),
	}
	f.svc = NewAuthService(Deps{
		Principals: f.principals,
		Roles:      newMemRoleRepo(),
		Profiles:   f.profiles,
		Sessions:   f.sessions,
		Tx:         passthroughTx{},
		Hasher:     f.hasher,
		Tokens:     tokens,
		Audit:      f.audit,
		Events:     f.events,
		ResetTTL:   15 * time.Minute,
	})
	return f
}

func (f *authFixture) addPrincipal(t *testing.T, id, email, password, role string, state principaldomain.ApprovalState, active bool) {
	t.Helper()
	hash, err := f.hasher.Hash([]byte(password))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	f.principals.put(&principaldomain.Principal{
		ID:            id,
		Name:          "User " + id,
		Email:         email,
		PasswordHash:  hash,
		RoleID:        "role-" + role,
		RoleName:      role,
		Active:        active,
		ApprovalState: state,
	})
}

func (f *authFixture) nextEvent(t *testing.T, eventType string) *telemetrydomain.Event {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case e := <-f.events:
			if e.Type == eventType {
				return e
			}
		case <-deadline:
			t.Fatalf("no %s event", eventType)
			return nil
		}
	}
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	f.addPrincipal(t, "p1", "jane@x.com", "secret1", "EMPLOYEE", principaldomain.StateApproved, true)

	res, err := f.svc.Login(context.Background(), " Jane@X.com ", "secret1", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" || res.Principal.ID != "p1" {
		t.Fatalf("result = %+v", res)
	}
	if len(f.sessions.m) != 1 {
		t.Errorf("sessions = %d, want 1", len(f.sessions.m))
	}
	if !f.audit.has(audit.ActionLoginSuccess) {
		t.Error("login_success not audited")
	}
	f.nextEvent(t, telemetrydomain.EventLoginSuccess)
}

func TestAuthService_LoginErrors(t *testing.T) {
	f := newAuthFixture(t)
	f.addPrincipal(t, "ok", "ok@x.com", "secret1", "EMPLOYEE", principaldomain.StateApproved, true)
	f.addPrincipal(t, "off", "off@x.com", "secret1", "EMPLOYEE", principaldomain.StateApproved, false)
	f.addPrincipal(t, "wait", "wait@x.com", "secret1", "EMPLOYEE", principaldomain.StatePending, true)
	f.addPrincipal(t, "no", "no@x.com", "secret1", "EMPLOYEE", principaldomain.StateRejected, true)
	f.addPrincipal(t, "hr", "hr@x.com", "secret1", "HR", principaldomain.StatePending, true)

	testCases := []struct {
		name, email, password string
		want                  error
	}{
		{"missing password", "ok@x.com", "", ErrCredentialsRequired},
		{"missing email", "", "secret1", ErrCredentialsRequired},
		{"unknown email", "ghost@x.com", "secret1", ErrInvalidCredentials},
		{"wrong password", "ok@x.com", "nope", ErrInvalidCredentials},
		{"disabled", "off@x.com", "secret1", ErrAccountDisabled},
		{"pending", "wait@x.com", "secret1", errs.New(errs.Forbidden, msgPendingForTest)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Login(context.Background(), tc.email, tc.password, "")
			if !errors.Is(err, tc.want) {
				t.Errorf("Login: want %v, got %v", tc.want, err)
			}
		})
	}

	t.Run("rejected", func(t *testing.T) {
		_, err := f.svc.Login(context.Background(), "no@x.com", "secret1", "")
		if !errs.IsKind(err, errs.Forbidden) || errs.As(err).Details["approvalStatus"] != "REJECTED" {
			t.Errorf("Login rejected: got %v", err)
		}
	})
	t.Run("pending HR bypasses the gate", func(t *testing.T) {
		if _, err := f.svc.Login(context.Background(), "hr@x.com", "secret1", ""); err != nil {
			t.Errorf("Login HR: %v", err)
		}
	})
	if !f.audit.has(audit.ActionLoginFailure) {
		t.Error("login_failure not audited")
	}
}

const msgPendingForTest = "Your account is pending admin approval. Please wait for approval before logging in."

func TestAuthService_Signup(t *testing.T) {
	f := newAuthFixture(t)
	p, err := f.svc.Signup(context.Background(), SignupInput{
		Name: "Jane", Email: "Jane@X.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if p.ApprovalState != principaldomain.StatePending || p.RoleName != "EMPLOYEE" || p.Email != "jane@x.com" {
		t.Errorf("principal = %+v", p)
	}
	if len(f.profiles.byID) != 0 {
		t.Error("signup must not create a profile")
	}

	testCases := []struct {
		name string
		in   SignupInput
		want error
	}{
		{"missing field", SignupInput{Name: "A", Email: "a@x.com", Password: "secret1"}, ErrAllFieldsRequired},
		{"mismatch", SignupInput{Name: "A", Email: "a@x.com", Password: "secret1", ConfirmPassword: "secret2"}, ErrPasswordMismatch},
		{"short", SignupInput{Name: "A", Email: "a@x.com", Password: "abc", ConfirmPassword: "abc"}, ErrPasswordTooShort},
		{"duplicate", SignupInput{Name: "B", Email: "jane@x.com", Password: "secret1", ConfirmPassword: "secret1"}, ErrEmailAlreadyRegistered},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Signup(context.Background(), tc.in); !errors.Is(err, tc.want) {
				t.Errorf("Signup: want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAuthService_SignupThenLoginIsGated(t *testing.T) {
	f := newAuthFixture(t)
	if _, err := f.svc.Signup(context.Background(), SignupInput{
		Name: "Jane", Email: "jane@x.com", Password: "secret1", ConfirmPassword: "secret1",
	}); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	_, err := f.svc.Login(context.Background(), "jane@x.com", "secret1", "")
	if !errs.IsKind(err, errs.Forbidden) || errs.As(err).Details["approvalStatus"] != "PENDING" {
		t.Errorf("Login before approval: got %v", err)
	}
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture(t)
	p, profile, err := f.svc.Register(context.Background(), RegisterInput{
		Name: "Harriet", Email: "harriet@x.com", Password: "secret1", RoleName: "hr",
	}, "admin-1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if p.ApprovalState != principaldomain.StateApproved || p.RoleName != "HR" {
		t.Errorf("principal = %+v", p)
	}
	if p.ApprovedBy == nil || *p.ApprovedBy != "admin-1" {
		t.Error("approvedBy not recorded")
	}
	if profile.Department != "Human Resources" || profile.PrincipalID == nil || *profile.PrincipalID != p.ID {
		t.Errorf("profile = %+v", profile)
	}
	if _, err := f.svc.Login(context.Background(), "harriet@x.com", "secret1", ""); err != nil {
		t.Errorf("Login registered: %v", err)
	}

	_, _, err = f.svc.Register(context.Background(), RegisterInput{
		Name: "X", Email: "x@x.com", Password: "secret1", RoleName: "MANAGER",
	}, "admin-1")
	if !errors.Is(err, ErrRoleNotFound) {
		t.Errorf("unknown role: want ErrRoleNotFound, got %v", err)
	}
}

func TestAuthService_RefreshRotatesAndDetectsReuse(t *testing.T) {
	f := newAuthFixture(t)
	f.addPrincipal(t, "p1", "jane@x.com", "secret1", "EMPLOYEE", principaldomain.StateApproved, true)
	ctx := context.Background()
	login, err := f.svc.Login(ctx, "jane@x.com", "secret1", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	refreshed, err := f.svc.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("refresh token was not rotated")
	}

	if _, err := f.svc.Refresh(ctx, login.RefreshToken); !errors.Is(err, ErrRefreshTokenReuse) {
		t.Fatalf("reuse: want ErrRefreshTokenReuse, got %v", err)
	}
	if f.sessions.revokedCount() != 1 {
		t.Errorf("revoked sessions = %d, want 1", f.sessions.revokedCount())
	}
	if _, err := f.svc.Refresh(ctx, refreshed.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("after revoke-all: want ErrInvalidRefreshToken, got %v", err)
	}
	f.nextEvent(t, telemetrydomain.EventRefreshReuse)
}

func TestAuthService_RefreshInvalid(t *testing.T) {
	f := newAuthFixture(t)
	for _, tok := range []string{"", "not-a-jwt"} {
		if _, err := f.svc.Refresh(context.Background(), tok); !errors.Is(err, ErrInvalidRefreshToken) {
			t.Errorf("Refresh(%q): want ErrInvalidRefreshToken, got %v", tok, err)
		}
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	f.addPrincipal(t, "p1", "jane@x.com", "secret1", "EMPLOYEE", principaldomain.StateApproved, true)
	ctx := context.Background()
	login, err := f.svc.Login(ctx, "jane@x.com", "secret1", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := f.svc.Logout(ctx, login.RefreshToken, "", "p1"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := f.svc.Refresh(ctx, login.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("Refresh after logout: want ErrInvalidRefreshToken, got %v", err)
	}
	if err := f.svc.Logout(ctx, "", "", "p1"); err != nil {
		t.Errorf("Logout with nothing: %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	f.addPrincipal(t, "p1", "jane@x.com", "secret1", "EMPLOYEE", principaldomain.StateApproved, true)
	ctx := context.Background()
	if err := f.svc.ChangePassword(ctx, "p1", "wrong!", "secret2"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("wrong current: want ErrWrongPassword, got %v", err)
	}
	if err := f.svc.ChangePassword(ctx, "p1", "secret1", "secret2"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := f.svc.Login(ctx, "jane@x.com", "secret2", ""); err != nil {
		t.Errorf("Login with new password: %v", err)
	}
}

func TestAuthService_ForgotAndResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.addPrincipal(t, "p1", "jane@x.com", "secret1", "EMPLOYEE", principaldomain.StateApproved, true)
	ctx := context.Background()

	if err := f.svc.ForgotPassword(ctx, "ghost@x.com"); err != nil {
		t.Fatalf("ForgotPassword unknown email: %v", err)
	}
	if err := f.svc.ForgotPassword(ctx, "jane@x.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	e := f.nextEvent(t, telemetrydomain.EventPasswordResetRequested)
	token, _ := e.Metadata["resetToken"].(string)
	if token == "" {
		t.Fatal("reset token not emitted")
	}

	if err := f.svc.ResetPassword(ctx, "bogus", "secret9"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("bogus token: want ErrInvalidResetToken, got %v", err)
	}
	if err := f.svc.ResetPassword(ctx, token, "secret9"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := f.svc.Login(ctx, "jane@x.com", "secret9", ""); err != nil {
		t.Errorf("Login after reset: %v", err)
	}
	if err := f.svc.ResetPassword(ctx, token, "secret10"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("token reuse: want ErrInvalidResetToken, got %v", err)
	}
}

func TestAuthService_ResetTokenExpires(t *testing.T) {
	f := newAuthFixture(t)
	f.addPrincipal(t, "p1", "jane@x.com", "secret1", "EMPLOYEE", principaldomain.StateApproved, true)
	ctx := context.Background()
	if err := f.svc.ForgotPassword(ctx, "jane@x.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	token, _ := f.nextEvent(t, telemetrydomain.EventPasswordResetRequested).Metadata["resetToken"].(string)
	f.svc.now = func() time.Time { return time.Now().Add(time.Hour) }
	if err := f.svc.ResetPassword(ctx, token, "secret9"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("expired token: want ErrInvalidResetToken, got %v", err)
	}
}

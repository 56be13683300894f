package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	approvalservice "employee-management/backend/internal/approval/service"
	"employee-management/backend/internal/audit"
	employeedomain "employee-management/backend/internal/employee/domain"
	"employee-management/backend/internal/platform/errs"
	principaldomain "employee-management/backend/internal/principal/domain"
	principalrepo "employee-management/backend/internal/principal/repository"
	roledomain "employee-management/backend/internal/role/domain"
	"employee-management/backend/internal/security"
	sessiondomain "employee-management/backend/internal/session/domain"
	"employee-management/backend/internal/telemetry"
	telemetrydomain "employee-management/backend/internal/telemetry/domain"
)

// minPasswordLen is the shortest password accepted by signup, register and password changes.
const minPasswordLen = 6

// Sentinel errors for the auth service; the HTTP layer maps them by kind.
var (
	ErrCredentialsRequired    = errs.New(errs.Validation, "Email and password are required")
	ErrInvalidCredentials     = errs.New(errs.Unauthenticated, "Invalid email or password")
	ErrAccountDisabled        = errs.New(errs.Forbidden, "Account is disabled")
	ErrAllFieldsRequired      = errs.New(errs.Validation, "All fields are required")
	ErrPasswordMismatch       = errs.New(errs.Validation, "Passwords do not match")
	ErrPasswordTooShort       = errs.Newf(errs.Validation, "Password must be at least %d characters", minPasswordLen)
	ErrEmailAlreadyRegistered = errs.New(errs.Conflict, "Email already registered")
	ErrRoleNotFound           = errs.New(errs.NotFound, "Role not found")
	ErrInvalidRefreshToken    = errs.New(errs.Unauthenticated, "Invalid or expired refresh token")
	ErrRefreshTokenReuse      = errs.New(errs.Unauthenticated, "Refresh token reuse detected; all sessions revoked")
	ErrWrongPassword          = errs.New(errs.Validation, "Current password is incorrect")
	ErrInvalidResetToken      = errs.New(errs.Validation, "Invalid or expired reset token")
	ErrPrincipalNotFound      = errs.New(errs.NotFound, "User not found")
)

// AuthResult holds the outcome of Login and Refresh.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Principal    *principaldomain.Principal
}

// SignupInput is a self-registration request.
type SignupInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// RegisterInput is an administrator-created account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	RoleName string
}

// PrincipalRepo is the minimal principal repository needed by the auth service.
type PrincipalRepo interface {
	GetByID(ctx context.Context, id string) (*principaldomain.Principal, error)
	GetByEmail(ctx context.Context, email string) (*principaldomain.Principal, error)
	GetByResetTokenHash(ctx context.Context, hash string, now time.Time) (*principaldomain.Principal, error)
	Create(ctx context.Context, p *principaldomain.Principal) error
	SetPassword(ctx context.Context, id, hash string) error
	SetResetToken(ctx context.Context, id, hash string, expiresAt time.Time) error
}

// RoleRepo is the minimal role repository needed by the auth service.
type RoleRepo interface {
	GetByName(ctx context.Context, name roledomain.Name) (*roledomain.Role, error)
}

// ProfileRepo creates the employee profile of an administrator-created account.
type ProfileRepo interface {
	UpsertForPrincipal(ctx context.Context, e *employeedomain.Employee) (*employeedomain.Employee, error)
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	Revoke(ctx context.Context, id string) error
	RevokeAllByPrincipal(ctx context.Context, principalID string) error
	RotateRefreshToken(ctx context.Context, sessionID, oldJti, newJti, refreshTokenHash string, at time.Time) (bool, error)
}

// Transactor runs fn inside one database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuthService implements password login, signup, token refresh and the password flows.
type AuthService struct {
	principals PrincipalRepo
	roles      RoleRepo
	profiles   ProfileRepo
	sessions   SessionRepo
	tx         Transactor
	hasher     *security.Hasher
	tokens     *security.TokenProvider
	audit      audit.AuditLogger
	events     telemetry.EventEmitter
	resetTTL   time.Duration
	now        func() time.Time
}

// Deps are the collaborators of AuthService. Audit and Events may be nil.
type Deps struct {
	Principals PrincipalRepo
	Roles      RoleRepo
	Profiles   ProfileRepo
	Sessions   SessionRepo
	Tx         Transactor
	Hasher     *security.Hasher
	Tokens     *security.TokenProvider
	Audit      audit.AuditLogger
	Events     telemetry.EventEmitter
	ResetTTL   time.Duration
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(d Deps) *AuthService {
	resetTTL := d.ResetTTL
	if resetTTL <= 0 {
		resetTTL = 15 * time.Minute
	}
	return &AuthService{
		principals: d.Principals,
		roles:      d.Roles,
		profiles:   d.Profiles,
		sessions:   d.Sessions,
		tx:         d.Tx,
		hasher:     d.Hasher,
		tokens:     d.Tokens,
		audit:      d.Audit,
		events:     d.Events,
		resetTTL:   resetTTL,
		now:        time.Now,
	}
}

// Login verifies the credentials, applies the approval gate, opens a refresh session and returns tokens.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*AuthResult, error) {
	email = principaldomain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}
	p, err := s.principals.GetByEmail(ctx, email)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if p == nil || !s.hasher.Matches(p.PasswordHash, []byte(password)) {
		s.loginFailed(ctx, "", email, "invalid_credentials")
		return nil, ErrInvalidCredentials
	}
	if !p.Active {
		s.loginFailed(ctx, p.ID, email, "disabled")
		return nil, ErrAccountDisabled
	}
	if err := approvalservice.CheckLogin(p, p.RoleName); err != nil {
		s.loginFailed(ctx, p.ID, email, strings.ToLower(string(p.ApprovalState)))
		return nil, err
	}

	now := s.now().UTC()
	sessionID := uuid.New().String()
	refreshToken, jti, refreshExp, err := s.tokens.IssueRefresh(sessionID, p.ID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	accessToken, _, accessExp, err := s.tokens.IssueAccess(sessionID, p.ID, p.RoleName, p.Email)
	if err != nil {
		return nil, errs.Internal(err)
	}
	sess := &sessiondomain.Session{
		ID:               sessionID,
		PrincipalID:      p.ID,
		ExpiresAt:        refreshExp,
		IPAddress:        ip,
		RefreshJti:       jti,
		RefreshTokenHash: security.HashToken(refreshToken),
		CreatedAt:        now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, errs.Internal(err)
	}
	s.logAudit(ctx, p.ID, audit.ActionLoginSuccess, audit.ResourceAuthentication, "")
	telemetry.EmitAsync(s.events, telemetrydomain.NewEvent(telemetrydomain.EventLoginSuccess, p.ID, p.ID, nil))
	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp,
		Principal:    p,
	}, nil
}

func (s *AuthService) loginFailed(ctx context.Context, principalID, email, reason string) {
	s.logAudit(ctx, principalID, audit.ActionLoginFailure, audit.ResourceAuthentication, "reason="+reason)
	telemetry.EmitAsync(s.events, telemetrydomain.NewEvent(telemetrydomain.EventLoginFailure, principalID, email,
		map[string]any{"reason": reason}))
}

// Signup self-registers an EMPLOYEE account in state PENDING. No profile is created until approval.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*principaldomain.Principal, error) {
	name := strings.TrimSpace(in.Name)
	email := principaldomain.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return nil, ErrAllFieldsRequired
	}
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if len(in.Password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}
	role, err := s.role(ctx, roledomain.Employee)
	if err != nil {
		return nil, err
	}
	p, err := s.newPrincipal(name, email, in.Password, role)
	if err != nil {
		return nil, err
	}
	if err := s.create(ctx, p); err != nil {
		return nil, err
	}
	s.logAudit(ctx, p.ID, audit.ActionSignup, audit.ResourcePrincipal, "")
	telemetry.EmitAsync(s.events, telemetrydomain.NewEvent(telemetrydomain.EventSignup, p.ID, p.ID, nil))
	return p, nil
}

// Register creates an APPROVED account with the named role and its linked employee profile in one
// transaction. Accounts created this way never pass through PENDING.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, actorID string) (*principaldomain.Principal, *employeedomain.Employee, error) {
	name := strings.TrimSpace(in.Name)
	email := principaldomain.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" || strings.TrimSpace(in.RoleName) == "" {
		return nil, nil, ErrAllFieldsRequired
	}
	if len(in.Password) < minPasswordLen {
		return nil, nil, ErrPasswordTooShort
	}
	roleName, ok := roledomain.ParseName(in.RoleName)
	if !ok {
		return nil, nil, ErrRoleNotFound
	}
	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		return nil, nil, errs.Internal(err)
	}
	if role == nil {
		return nil, nil, ErrRoleNotFound
	}
	p, err := s.newPrincipal(name, email, in.Password, role)
	if err != nil {
		return nil, nil, err
	}
	p.ApprovalState = principaldomain.StateApproved
	if actorID != "" {
		p.ApprovedBy = &actorID
	}
	approvedAt := p.CreatedAt
	p.ApprovedAt = &approvedAt

	var profile *employeedomain.Employee
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.create(ctx, p); err != nil {
			return err
		}
		stored, err := s.profiles.UpsertForPrincipal(ctx, &employeedomain.Employee{
			ID:          uuid.New().String(),
			PrincipalID: &p.ID,
			Name:        p.Name,
			Email:       p.Email,
			Department:  employeedomain.DepartmentForRole(p.RoleName),
			JoiningDate: p.CreatedAt,
			Status:      employeedomain.StatusActive,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.CreatedAt,
		})
		if err != nil {
			return errs.Internal(err)
		}
		profile = stored
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	telemetry.EmitAsync(s.events, telemetrydomain.NewEvent(telemetrydomain.EventPrincipalRegistered, actorID, p.ID,
		map[string]any{"role": p.RoleName}))
	return p, profile, nil
}

// Refresh validates the refresh token against its session, rotates it and returns new tokens.
// Presenting a superseded refresh token revokes every session of the principal.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	sessionID, jti, principalID, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	now := s.now().UTC()
	sess, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if sess == nil || sess.PrincipalID != principalID || !sess.Usable(now) {
		return nil, ErrInvalidRefreshToken
	}
	if sess.RefreshJti != jti {
		return nil, s.refreshReused(ctx, principalID, sessionID)
	}
	if !security.TokenHashEqual(refreshToken, sess.RefreshTokenHash) {
		return nil, ErrInvalidRefreshToken
	}
	p, err := s.principals.GetByID(ctx, principalID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if p == nil || !p.Active {
		_ = s.sessions.Revoke(ctx, sessionID)
		return nil, ErrInvalidRefreshToken
	}

	newRefresh, newJti, _, err := s.tokens.IssueRefresh(sessionID, principalID)
	if err != nil {
		return nil, errs.Internal(err)
	}
	rotated, err := s.sessions.RotateRefreshToken(ctx, sessionID, jti, newJti, security.HashToken(newRefresh), now)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if !rotated {
		return nil, s.refreshReused(ctx, principalID, sessionID)
	}
	accessToken, _, accessExp, err := s.tokens.IssueAccess(sessionID, p.ID, p.RoleName, p.Email)
	if err != nil {
		return nil, errs.Internal(err)
	}
	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresAt:    accessExp,
		Principal:    p,
	}, nil
}

func (s *AuthService) refreshReused(ctx context.Context, principalID, sessionID string) error {
	if err := s.sessions.RevokeAllByPrincipal(ctx, principalID); err != nil {
		return errs.Internal(err)
	}
	telemetry.EmitAsync(s.events, telemetrydomain.NewEvent(telemetrydomain.EventRefreshReuse, principalID, sessionID, nil))
	return ErrRefreshTokenReuse
}

// Logout revokes the session named by the refresh token, or sessionID (from the access token) when the
// refresh token is empty or invalid. A call naming no session is a no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken, sessionID, principalID string) error {
	if refreshToken != "" {
		if sid, _, _, err := s.tokens.ValidateRefresh(refreshToken); err == nil {
			sessionID = sid
		}
	}
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return errs.Internal(err)
	}
	s.logAudit(ctx, principalID, audit.ActionLogout, audit.ResourceAuthentication, "")
	telemetry.EmitAsync(s.events, telemetrydomain.NewEvent(telemetrydomain.EventLogout, principalID, sessionID, nil))
	return nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, principalID, current, next string) error {
	if current == "" || next == "" {
		return ErrAllFieldsRequired
	}
	if len(next) < minPasswordLen {
		return ErrPasswordTooShort
	}
	p, err := s.principals.GetByID(ctx, principalID)
	if err != nil {
		return errs.Internal(err)
	}
	if p == nil {
		return ErrPrincipalNotFound
	}
	if !s.hasher.Matches(p.PasswordHash, []byte(current)) {
		return ErrWrongPassword
	}
	if err := s.setPassword(ctx, p.ID, next); err != nil {
		return err
	}
	s.logAudit(ctx, p.ID, audit.ActionPasswordChange, audit.ResourcePrincipal, "")
	telemetry.EmitAsync(s.events, telemetrydomain.NewEvent(telemetrydomain.EventPasswordChanged, p.ID, p.ID, nil))
	return nil
}

// ForgotPassword issues a reset token for email when an account exists. The caller sees the same
// outcome either way; the token travels on the activity stream only.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = principaldomain.NormalizeEmail(email)
	if email == "" {
		return errs.New(errs.Validation, "Email is required")
	}
	p, err := s.principals.GetByEmail(ctx, email)
	if err != nil {
		return errs.Internal(err)
	}
	if p == nil {
		return nil
	}
	raw, hash, err := security.NewResetToken()
	if err != nil {
		return errs.Internal(err)
	}
	expiresAt := s.now().UTC().Add(s.resetTTL)
	if err := s.principals.SetResetToken(ctx, p.ID, hash, expiresAt); err != nil {
		return errs.Internal(err)
	}
	telemetry.EmitAsync(s.events, telemetrydomain.NewEvent(telemetrydomain.EventPasswordResetRequested, p.ID, p.ID,
		map[string]any{"email": p.Email, "resetToken": raw, "expiresAt": expiresAt.Format(time.RFC3339)}))
	return nil
}

// ResetPassword sets a new password for the holder of an unexpired reset token and revokes its sessions.
func (s *AuthService) ResetPassword(ctx context.Context, token, next string) error {
	if token == "" {
		return ErrInvalidResetToken
	}
	if len(next) < minPasswordLen {
		return ErrPasswordTooShort
	}
	p, err := s.principals.GetByResetTokenHash(ctx, security.HashToken(token), s.now().UTC())
	if err != nil {
		return errs.Internal(err)
	}
	if p == nil {
		return ErrInvalidResetToken
	}
	if err := s.setPassword(ctx, p.ID, next); err != nil {
		return err
	}
	if err := s.sessions.RevokeAllByPrincipal(ctx, p.ID); err != nil {
		return errs.Internal(err)
	}
	s.logAudit(ctx, p.ID, audit.ActionPasswordReset, audit.ResourcePrincipal, "")
	telemetry.EmitAsync(s.events, telemetrydomain.NewEvent(telemetrydomain.EventPasswordReset, p.ID, p.ID, nil))
	return nil
}

func (s *AuthService) role(ctx context.Context, name roledomain.Name) (*roledomain.Role, error) {
	role, err := s.roles.GetByName(ctx, name)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if role == nil {
		return nil, errs.Internal(fmt.Errorf("role %s is not seeded", name))
	}
	return role, nil
}

func (s *AuthService) newPrincipal(name, email, password string, role *roledomain.Role) (*principaldomain.Principal, error) {
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, errs.Internal(err)
	}
	now := s.now().UTC()
	p := &principaldomain.Principal{
		ID:            uuid.New().String(),
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		RoleID:        role.ID,
		RoleName:      string(role.Name),
		Active:        true,
		ApprovalState: principaldomain.StatePending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := p.Validate(); err != nil {
		return nil, errs.New(errs.Validation, err.Error())
	}
	return p, nil
}

func (s *AuthService) create(ctx context.Context, p *principaldomain.Principal) error {
	existing, err := s.principals.GetByEmail(ctx, p.Email)
	if err != nil {
		return errs.Internal(err)
	}
	if existing != nil {
		return ErrEmailAlreadyRegistered
	}
	if err := s.principals.Create(ctx, p); err != nil {
		if errors.Is(err, principalrepo.ErrEmailTaken) {
			return ErrEmailAlreadyRegistered
		}
		return errs.Internal(err)
	}
	return nil
}

func (s *AuthService) setPassword(ctx context.Context, id, password string) error {
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return errs.Internal(err)
	}
	if err := s.principals.SetPassword(ctx, id, hash); err != nil {
		return errs.Internal(err)
	}
	return nil
}

func (s *AuthService) logAudit(ctx context.Context, principalID, action, resource, metadata string) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, principalID, action, resource, metadata)
	}
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	approvalservice "employee-management/backend/internal/approval/service"
	"employee-management/backend/internal/platform/httpx"
	"employee-management/backend/internal/principal/domain"
	"employee-management/backend/internal/principal/service"
	"employee-management/backend/internal/server/middleware"
)

// Service is the subset of the principal service used by the handlers.
type Service interface {
	Create(ctx context.Context, in service.CreateInput, actorID string) (*domain.Principal, error)
	List(ctx context.Context, state domain.ApprovalState) ([]*domain.Principal, error)
	ListPending(ctx context.Context) ([]*domain.Principal, error)
	Get(ctx context.Context, id, callerID, callerRole string) (*domain.Principal, error)
	Update(ctx context.Context, id, name, email string) (*domain.Principal, error)
	ToggleActive(ctx context.Context, id string) (*domain.Principal, error)
	AssignRole(ctx context.Context, id, roleName string) (*domain.Principal, error)
	ResetPassword(ctx context.Context, id, password string) error
	Approve(ctx context.Context, id, deciderID string) (*approvalservice.Approval, error)
	Reject(ctx context.Context, id, deciderID, reason string) (*domain.Principal, error)
}

// Handler serves /api/users.
type Handler struct {
	svc Service
}

// NewHandler returns a users Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// PrincipalJSON is the public form of a principal. It never carries the password or reset token.
type PrincipalJSON struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	IsActive        bool       `json:"isActive"`
	ApprovalStatus  string     `json:"approvalStatus"`
	ApprovedBy      *string    `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ToJSON converts p to its public form.
func ToJSON(p *domain.Principal) PrincipalJSON {
	return PrincipalJSON{
		ID:              p.ID,
		Name:            p.Name,
		Email:           p.Email,
		Role:            p.RoleName,
		IsActive:        p.Active,
		ApprovalStatus:  string(p.ApprovalState),
		ApprovedBy:      p.ApprovedBy,
		ApprovedAt:      p.ApprovedAt,
		RejectionReason: p.RejectionReason,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toJSONList(list []*domain.Principal) []PrincipalJSON {
	out := make([]PrincipalJSON, 0, len(list))
	for _, p := range list {
		out = append(out, ToJSON(p))
	}
	return out
}

type createRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleName string `json:"roleName"`
}

func (p createRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, is.Email),
	)
}

// Create handles POST /api/users.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	var req createRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	p, err := h.svc.Create(r.Context(), service.CreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		RoleName: req.RoleName,
	}, caller.PrincipalID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"message": "User created successfully", "user": ToJSON(p)})
}

// List handles GET /api/users. ?approvalStatus= narrows by state.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), domain.ApprovalState(r.URL.Query().Get("approvalStatus")))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toJSONList(list))
}

// ListPending handles GET /api/users/pending.
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListPending(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"count": len(list), "users": toJSONList(list)})
}

// Get handles GET /api/users/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), caller.PrincipalID, caller.Role)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ToJSON(p))
}

type updateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (p updateRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, is.Email),
	)
}

// Update handles PUT /api/users/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.Email)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "User updated successfully", "user": ToJSON(p)})
}

// ToggleStatus handles PATCH /api/users/{id}/status.
func (h *Handler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.ToggleActive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	msg := "User deactivated"
	if p.Active {
		msg = "User activated"
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": msg, "user": ToJSON(p)})
}

type assignRoleRequest struct {
	RoleName string `json:"roleName"`
}

func (p assignRoleRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.RoleName, validation.Required),
	)
}

// AssignRole handles PATCH /api/users/{id}/role.
func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var req assignRoleRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	p, err := h.svc.AssignRole(r.Context(), chi.URLParam(r, "id"), req.RoleName)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Role assigned successfully", "user": ToJSON(p)})
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// ResetPassword handles PATCH /api/users/{id}/reset-password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := h.svc.ResetPassword(r.Context(), chi.URLParam(r, "id"), req.NewPassword); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Password reset successfully")
}

// Approve handles PUT /api/users/{id}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	res, err := h.svc.Approve(r.Context(), chi.URLParam(r, "id"), caller.PrincipalID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	body := map[string]any{"message": "User approved successfully", "user": ToJSON(res.Principal)}
	if res.Profile != nil {
		body["employee"] = map[string]any{
			"id":         res.Profile.ID,
			"name":       res.Profile.Name,
			"email":      res.Profile.Email,
			"department": res.Profile.Department,
			"status":     res.Profile.Status,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, body)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject handles PUT /api/users/{id}/reject.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.CallerFrom(r.Context())
	var req rejectRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	p, err := h.svc.Reject(r.Context(), chi.URLParam(r, "id"), caller.PrincipalID, req.Reason)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "User registration rejected", "user": ToJSON(p)})
}

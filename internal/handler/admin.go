package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/lumapay/paylink/internal/domain"
	"github.com/lumapay/paylink/internal/service"
	"github.com/lumapay/paylink/pkg/response"
)

// AdminHandler serves the back-office: client management, fee configuration
// and installment plans
type AdminHandler struct {
	service   *service.AdminService
	validator *validator.Validate
}

func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{
		service:   adminService,
		validator: newValidator(),
	}
}

// ListClients returns approved clients, optionally filtered by ?q=
func (h *AdminHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, clients)
}

// ListPendingClients returns accounts awaiting approval
func (h *AdminHandler) ListPendingClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListPendingClients(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, clients)
}

// ApproveClient flips the approval gate
func (h *AdminHandler) ApproveClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.clientID(w, r)
	if !ok {
		return
	}
	if err := h.service.ApproveClient(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, nil)
}

// BlockClient blocks an account
func (h *AdminHandler) BlockClient(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, true)
}

// UnblockClient unblocks an account
func (h *AdminHandler) UnblockClient(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, false)
}

func (h *AdminHandler) setBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	id, ok := h.clientID(w, r)
	if !ok {
		return
	}
	if err := h.service.SetClientBlocked(r.Context(), id, blocked); err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, nil)
}

// UpdateClient applies admin edits, including the approval flag
func (h *AdminHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.clientID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateClientRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	client, err := h.service.UpdateClient(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, client)
}

// DeleteClient removes an account
func (h *AdminHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.clientID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteClient(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, nil)
}

// GetFeeConfiguration returns the current configuration record
func (h *AdminHandler) GetFeeConfiguration(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.GetFeeConfiguration(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, cfg)
}

// UpdateFeeConfiguration stores a new configuration record
func (h *AdminHandler) UpdateFeeConfiguration(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateFeeConfigurationRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	cfg, err := h.service.UpdateFeeConfiguration(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, cfg)
}

// ListPlans returns installment plans; ?active=true restricts to active ones
func (h *AdminHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	plans, err := h.service.ListPlans(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, plans)
}

// CreatePlan creates an installment plan
func (h *AdminHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req domain.UpsertInstallmentPlanRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	plan, err := h.service.CreatePlan(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, plan)
}

// UpdatePlan edits an installment plan
func (h *AdminHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["planId"])
	if err != nil {
		response.BadRequest(w, "Invalid plan id", err)
		return
	}

	var req domain.UpsertInstallmentPlanRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	plan, err := h.service.UpdatePlan(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, plan)
}

// DeletePlan removes an installment plan
func (h *AdminHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["planId"])
	if err != nil {
		response.BadRequest(w, "Invalid plan id", err)
		return
	}
	if err := h.service.DeletePlan(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, nil)
}

func (h *AdminHandler) clientID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["clientId"])
	if err != nil {
		response.BadRequest(w, "Invalid client id", err)
		return uuid.Nil, false
	}
	return id, true
}

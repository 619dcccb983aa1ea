package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/lumapay/paylink/internal/domain"
	"github.com/lumapay/paylink/internal/service"
	"github.com/lumapay/paylink/pkg/response"
)

// AuthHandler serves client registration/login and admin login
type AuthHandler struct {
	clients   *service.ClientService
	admins    *service.AdminService
	validator *validator.Validate
}

func NewAuthHandler(clients *service.ClientService, admins *service.AdminService) *AuthHandler {
	return &AuthHandler{
		clients:   clients,
		admins:    admins,
		validator: newValidator(),
	}
}

// Register creates a new, unapproved merchant account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterClientRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	client, err := h.clients.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, client)
}

// ClientLogin authenticates a merchant and issues a session token
func (h *AuthHandler) ClientLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.ClientLoginRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	resp, err := h.clients.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, resp)
}

// ClientLogout destroys the caller's session
func (h *AuthHandler) ClientLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.clients.Logout(r.Context(), BearerToken(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, nil)
}

// Profile returns the authenticated client's own account
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	client, err := h.clients.Get(r.Context(), PrincipalID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, client)
}

// UpdateProfile applies partial changes to the caller's own account
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateClientRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	client, err := h.clients.UpdateProfile(r.Context(), PrincipalID(r), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, client)
}

// AdminLogin authenticates a back-office principal
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminLoginRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	resp, err := h.admins.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, resp)
}

// AdminLogout destroys the admin session
func (h *AuthHandler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.admins.Logout(r.Context(), BearerToken(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, nil)
}

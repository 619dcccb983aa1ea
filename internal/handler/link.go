package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/lumapay/paylink/internal/domain"
	"github.com/lumapay/paylink/internal/service"
	"github.com/lumapay/paylink/pkg/response"
)

// LinkHandler serves the merchant-facing payment link operations
type LinkHandler struct {
	service   *service.LinkService
	validator *validator.Validate
}

func NewLinkHandler(linkService *service.LinkService) *LinkHandler {
	return &LinkHandler{
		service:   linkService,
		validator: newValidator(),
	}
}

// Preview prices a prospective link without persisting anything
func (h *LinkHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req domain.PreviewRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	preview, err := h.service.Preview(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, preview)
}

// Create prices, submits and persists a new payment link
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLinkRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	link, err := h.service.CreateLink(r.Context(), PrincipalID(r), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Created(w, link)
}

// List returns one page of the caller's links
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	links, err := h.service.ListLinks(r.Context(), PrincipalID(r), page, perPage)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, links)
}

// Dashboard summarizes the caller's links
func (h *LinkHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), PrincipalID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, stats)
}

// Plans lists the installment plans available for link creation
func (h *LinkHandler) Plans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.ActivePlans(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, plans)
}

// Poll queries the gateway for the link's settlement state
func (h *LinkHandler) Poll(w http.ResponseWriter, r *http.Request) {
	linkID, ok := h.linkID(w, r)
	if !ok {
		return
	}

	result, err := h.service.PollStatus(r.Context(), PrincipalID(r), linkID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, result)
}

// Breakdown itemizes the link's deduction for receipt display
func (h *LinkHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	linkID, ok := h.linkID(w, r)
	if !ok {
		return
	}

	breakdown, err := h.service.Breakdown(r.Context(), PrincipalID(r), linkID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.Success(w, breakdown)
}

// Ticket downloads the plain-text receipt for a link
func (h *LinkHandler) Ticket(w http.ResponseWriter, r *http.Request) {
	linkID, ok := h.linkID(w, r)
	if !ok {
		return
	}

	filename, text, err := h.service.Invoice(r.Context(), PrincipalID(r), linkID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (h *LinkHandler) linkID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["linkId"])
	if err != nil {
		response.BadRequest(w, "Invalid link id", err)
		return uuid.Nil, false
	}
	return id, true
}

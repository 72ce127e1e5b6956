package fulfillment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"restaurant-orders/internal/auth"
	"restaurant-orders/internal/logger"
	"restaurant-orders/internal/models"
)

// Handler handles HTTP requests for ticket status updates. The kitchen and
// waiter route groups differ only in the role required, not in behavior.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new fulfillment handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Register sets up the kitchen-facing and waiter-facing routes.
func (h *Handler) Register(mux *http.ServeMux, mw *auth.Middleware) {
	mux.HandleFunc("PATCH /kitchen/tickets/{id}", mw.Require(h.UpdateTicket, auth.RoleKitchen))
	mux.HandleFunc("PATCH /waiter/tickets/{id}", mw.Require(h.UpdateTicket, auth.RoleWaiter))
}

type updateTicketRequest struct {
	Status string `json:"status"`
}

// UpdateTicket handles PATCH /{kitchen|waiter}/tickets/{id} requests
func (h *Handler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	ticketID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid ticket id", requestID)
		return
	}

	var req updateTicketRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}

	newStatus, err := models.ParseTicketStatus(req.Status)
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	actor := "staff"
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		actor = claims.UserID
	}

	result, err := h.service.UpdateTicketStatus(r.Context(), ticketID, newStatus, actor, requestID)
	if err != nil {
		switch {
		case errors.Is(err, ErrTicketNotFound), errors.Is(err, ErrOrderNotFound):
			h.writeErrorResponse(w, http.StatusNotFound, err.Error(), requestID)
		case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrOrderCancelled):
			h.writeErrorResponse(w, http.StatusConflict, err.Error(), requestID)
		default:
			h.logger.Error("ticket_update_failed", "Failed to update ticket status", requestID, err, map[string]interface{}{
				"ticket_id": ticketID,
			})
			h.writeErrorResponse(w, http.StatusInternalServerError, "could not update order status, please retry", requestID)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

// writeErrorResponse writes an error response in JSON format
func (h *Handler) writeErrorResponse(w http.ResponseWriter, statusCode int, message, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	}

	json.NewEncoder(w).Encode(errorResponse)
}

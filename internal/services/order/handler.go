package order

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

// Handler handles HTTP requests for order creation and lookup.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new order handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Register sets up the customer-facing order routes. Waiters can look up any
// order for table service.
func (h *Handler) Register(mux *http.ServeMux, mw *auth.Middleware) {
	mux.HandleFunc("POST /orders", mw.Require(h.CreateOrder, auth.RoleCustomer))
	mux.HandleFunc("GET /orders/{id}", mw.Require(h.GetOrder, auth.RoleCustomer, auth.RoleWaiter, auth.RoleKitchen))
	mux.HandleFunc("POST /orders/{id}/cancel", mw.Require(h.CancelOrder, auth.RoleCustomer))
}

// CreateOrder handles POST /orders requests
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	var req models.CreateOrderRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "Missing credentials", requestID)
		return
	}

	result, err := h.service.CreateOrder(r.Context(), &req, claims.UserID, requestID)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			h.writeErrorResponse(w, http.StatusBadRequest, err.Error(), requestID)
			return
		}
		h.logger.Error("order_creation_failed", "Failed to create order", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to create order", requestID)
		return
	}

	response := models.CreateOrderResponse{
		OrderID:       result.Order.ID,
		Status:        string(result.Order.Status),
		PaymentStatus: string(result.Order.PaymentStatus),
		TotalPrice:    result.Order.TotalPrice,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

// GetOrder handles GET /orders/{id} requests
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	orderID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid order id", requestID)
		return
	}

	result, err := h.service.GetOrder(r.Context(), orderID, h.callerID(r))
	if err != nil {
		h.writeLookupError(w, err, requestID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

// CancelOrder handles POST /orders/{id}/cancel requests
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	orderID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid order id", requestID)
		return
	}

	if err := h.service.CancelOrder(r.Context(), orderID, h.callerID(r), requestID); err != nil {
		switch {
		case errors.Is(err, ErrNotCancellable):
			h.writeErrorResponse(w, http.StatusConflict, err.Error(), requestID)
		default:
			h.writeLookupError(w, err, requestID)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": string(models.OrderCancelled)})
}

// callerID returns the authenticated customer id, or empty for staff roles
// which may act on any order.
func (h *Handler) callerID(r *http.Request) string {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return ""
	}
	if claims.Role == auth.RoleCustomer {
		return claims.UserID
	}
	return ""
}

func (h *Handler) writeLookupError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, ErrOrderNotFound):
		h.writeErrorResponse(w, http.StatusNotFound, err.Error(), requestID)
	case errors.Is(err, ErrOrderNotOwned):
		// Do not reveal whether the order exists
		h.writeErrorResponse(w, http.StatusNotFound, ErrOrderNotFound.Error(), requestID)
	default:
		h.logger.Error("order_lookup_failed", "Failed to load order", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Failed to load order", requestID)
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

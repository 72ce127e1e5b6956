package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"restaurant-orders/internal/auth"
	"restaurant-orders/internal/logger"
)

// Handler handles HTTP requests for the payment service. Payment failures are
// reported without revealing which specific check failed.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new payment handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// Register sets up the payment routes. The webhook endpoint authenticates by
// body signature, not by bearer token.
func (h *Handler) Register(mux *http.ServeMux, mw *auth.Middleware) {
	mux.HandleFunc("POST /payments/order", mw.Require(h.CreateGatewayOrder, auth.RoleCustomer))
	mux.HandleFunc("POST /payments/verify", mw.Require(h.VerifyPayment, auth.RoleCustomer))
	mux.HandleFunc("POST /payments/webhook", h.Webhook)
	mux.HandleFunc("POST /payments/{paymentID}/refund", mw.Require(h.Refund, auth.RoleAdmin))
}

type createGatewayOrderRequest struct {
	OrderID int64 `json:"order_id"`
}

// CreateGatewayOrder handles POST /payments/order requests
func (h *Handler) CreateGatewayOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	var req createGatewayOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}
	if req.OrderID == 0 {
		h.writeErrorResponse(w, http.StatusBadRequest, "order_id is required", requestID)
		return
	}

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "authentication required", requestID)
		return
	}

	gatewayOrderID, err := h.service.CreateGatewayOrder(r.Context(), req.OrderID, claims.UserID, requestID)
	if err != nil {
		h.writePaymentError(w, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"order_id":          req.OrderID,
		"razorpay_order_id": gatewayOrderID,
	}, requestID)
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
	OrderID           *int64 `json:"order_id,omitempty"`
}

// VerifyPayment handles POST /payments/verify requests
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "razorpay_order_id, razorpay_payment_id and razorpay_signature are required", requestID)
		return
	}

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		h.writeErrorResponse(w, http.StatusUnauthorized, "authentication required", requestID)
		return
	}

	result, err := h.service.VerifyPayment(r.Context(), req.RazorpayOrderID, req.RazorpayPaymentID,
		req.RazorpaySignature, req.OrderID, claims.UserID, requestID)
	if err != nil {
		h.writePaymentError(w, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, result, requestID)
}

// Webhook handles POST /payments/webhook requests from the gateway
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "failed to read body", requestID)
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if signature == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "missing signature header", requestID)
		return
	}

	if err := h.service.HandleWebhook(r.Context(), body, signature, requestID); err != nil {
		h.writePaymentError(w, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"}, requestID)
}

type refundRequest struct {
	Amount *float64 `json:"amount,omitempty"`
}

// Refund handles POST /payments/{paymentID}/refund requests
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	paymentID := r.PathValue("paymentID")
	if paymentID == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "payment id is required", requestID)
		return
	}

	var req refundRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
			return
		}
	}

	refundID, err := h.service.Refund(r.Context(), paymentID, req.Amount, requestID)
	if err != nil {
		h.writePaymentError(w, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"refund_id":      refundID,
		"payment_status": "refunded",
	}, requestID)
}

// writePaymentError maps service errors to HTTP responses. Signature and
// ownership failures intentionally share one opaque message.
func (h *Handler) writePaymentError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, ErrInvalidSignature), errors.Is(err, ErrOrderNotOwned):
		h.writeErrorResponse(w, http.StatusBadRequest, "payment could not be verified", requestID)
	case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrPaymentNotFound):
		h.writeErrorResponse(w, http.StatusNotFound, err.Error(), requestID)
	case errors.Is(err, ErrNotRefundable):
		h.writeErrorResponse(w, http.StatusConflict, err.Error(), requestID)
	case errors.Is(err, ErrExternalService):
		h.writeErrorResponse(w, http.StatusBadGateway, "payment gateway unavailable", requestID)
	default:
		h.logger.Error("payment_request_failed", "Payment request failed", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, payload interface{}, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
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

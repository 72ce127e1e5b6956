package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-orders/internal/config"
	"restaurant-orders/internal/logger"
	"restaurant-orders/internal/models"
)

const (
	testKeySecret     = "test-key-secret"
	testWebhookSecret = "test-webhook-secret"
)

type fakeStore struct {
	orders map[int64]models.Order

	markPaidCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{orders: make(map[int64]models.Order)}
}

func (s *fakeStore) GetOrder(ctx context.Context, id int64) (models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, ErrOrderNotFound
	}
	return order, nil
}

func (s *fakeStore) GetOrderByGatewayPayment(ctx context.Context, gatewayPaymentID string) (models.Order, error) {
	for _, order := range s.orders {
		if order.RazorpayPaymentID != nil && *order.RazorpayPaymentID == gatewayPaymentID {
			return order, nil
		}
	}
	return models.Order{}, ErrPaymentNotFound
}

func (s *fakeStore) SetGatewayOrder(ctx context.Context, orderID int64, gatewayOrderID string) error {
	order := s.orders[orderID]
	order.RazorpayOrderID = &gatewayOrderID
	order.PaymentMethod = models.PaymentMethodRazorpay
	s.orders[orderID] = order
	return nil
}

func (s *fakeStore) MarkOrderPaid(ctx context.Context, orderID int64, gatewayOrderID, gatewayPaymentID string) error {
	s.markPaidCalls++
	order := s.orders[orderID]
	order.PaymentStatus = models.PaymentCompleted
	order.PaymentMethod = models.PaymentMethodRazorpay
	order.RazorpayOrderID = &gatewayOrderID
	order.RazorpayPaymentID = &gatewayPaymentID
	s.orders[orderID] = order
	return nil
}

func (s *fakeStore) SetPaymentStatus(ctx context.Context, orderID int64, status models.PaymentStatus) error {
	order := s.orders[orderID]
	order.PaymentStatus = status
	s.orders[orderID] = order
	return nil
}

func (s *fakeStore) SetPaymentStatusByGatewayOrder(ctx context.Context, gatewayOrderID string, gatewayPaymentID *string, status models.PaymentStatus) (models.Order, error) {
	for id, order := range s.orders {
		if order.RazorpayOrderID != nil && *order.RazorpayOrderID == gatewayOrderID {
			order.PaymentStatus = status
			if gatewayPaymentID != nil {
				order.RazorpayPaymentID = gatewayPaymentID
			}
			s.orders[id] = order
			return order, nil
		}
	}
	return models.Order{}, ErrOrderNotFound
}

type fakeGateway struct {
	createdOrders []int64
	refunds       []string
	err           error
}

func (g *fakeGateway) CreateRemoteOrder(ctx context.Context, amountPaise int64, currency, receipt string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.createdOrders = append(g.createdOrders, amountPaise)
	return fmt.Sprintf("order_rzp%d", len(g.createdOrders)), nil
}

func (g *fakeGateway) FetchPayment(ctx context.Context, paymentID string) (GatewayPayment, error) {
	if g.err != nil {
		return GatewayPayment{}, g.err
	}
	return GatewayPayment{ID: paymentID, Status: "captured", Amount: 1000}, nil
}

func (g *fakeGateway) Refund(ctx context.Context, paymentID string, amountPaise *int64) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.refunds = append(g.refunds, paymentID)
	return "rfnd_1", nil
}

type fakeNotifier struct {
	published []*models.PaymentEventMessage
}

func (n *fakeNotifier) PublishPaymentEvent(ctx context.Context, msg interface{}) error {
	n.published = append(n.published, msg.(*models.PaymentEventMessage))
	return nil
}

func newTestService() (*Service, *fakeStore, *fakeGateway, *fakeNotifier) {
	store := newFakeStore()
	gateway := &fakeGateway{}
	notifier := &fakeNotifier{}
	cfg := config.RazorpayConfig{KeyID: "rzp_test", KeySecret: testKeySecret, WebhookSecret: testWebhookSecret}
	svc := NewService(store, gateway, notifier, cfg, logger.New("payment-test"))
	return svc, store, gateway, notifier
}

func strPtr(s string) *string { return &s }
func i64Ptr(i int64) *int64   { return &i }

func TestVerifyPayment_Success(t *testing.T) {
	svc, store, _, notifier := newTestService()
	store.orders[1] = models.Order{ID: 1, CustomerID: "cust-1", PaymentStatus: models.PaymentPending}

	sig := ComputeCheckoutSignature(testKeySecret, "order_o1", "pay_p1")
	result, err := svc.VerifyPayment(context.Background(), "order_o1", "pay_p1", sig, i64Ptr(1), "cust-1", "req-1")
	require.NoError(t, err)

	assert.True(t, result.Verified)
	assert.Equal(t, string(models.PaymentCompleted), result.PaymentStatus)
	assert.Equal(t, models.PaymentCompleted, store.orders[1].PaymentStatus)
	assert.Equal(t, "pay_p1", *store.orders[1].RazorpayPaymentID)
	require.Len(t, notifier.published, 1)
	assert.Equal(t, int64(1), notifier.published[0].OrderID)
}

func TestVerifyPayment_BadSignature(t *testing.T) {
	svc, store, _, notifier := newTestService()
	store.orders[1] = models.Order{ID: 1, CustomerID: "cust-1", PaymentStatus: models.PaymentPending}

	_, err := svc.VerifyPayment(context.Background(), "order_o1", "pay_p1", "deadbeef", i64Ptr(1), "cust-1", "req-1")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	assert.Equal(t, models.PaymentPending, store.orders[1].PaymentStatus)
	assert.Empty(t, notifier.published)
}

func TestVerifyPayment_SignatureForOtherPayment(t *testing.T) {
	svc, store, _, _ := newTestService()
	store.orders[1] = models.Order{ID: 1, CustomerID: "cust-1"}

	// A valid signature for a different (order, payment) pair must not verify
	sig := ComputeCheckoutSignature(testKeySecret, "order_o1", "pay_other")
	_, err := svc.VerifyPayment(context.Background(), "order_o1", "pay_p1", sig, i64Ptr(1), "cust-1", "req-1")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyPayment_Idempotent(t *testing.T) {
	svc, store, _, notifier := newTestService()
	store.orders[1] = models.Order{ID: 1, CustomerID: "cust-1", PaymentStatus: models.PaymentPending}

	sig := ComputeCheckoutSignature(testKeySecret, "order_o1", "pay_p1")
	first, err := svc.VerifyPayment(context.Background(), "order_o1", "pay_p1", sig, i64Ptr(1), "cust-1", "req-1")
	require.NoError(t, err)

	second, err := svc.VerifyPayment(context.Background(), "order_o1", "pay_p1", sig, i64Ptr(1), "cust-1", "req-2")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.markPaidCalls, "repeated verification must not write again")
	assert.Len(t, notifier.published, 1, "repeated verification must not publish again")
}

func TestVerifyPayment_WithoutLocalOrder(t *testing.T) {
	svc, store, _, _ := newTestService()

	sig := ComputeCheckoutSignature(testKeySecret, "order_o1", "pay_p1")
	result, err := svc.VerifyPayment(context.Background(), "order_o1", "pay_p1", sig, nil, "cust-1", "req-1")
	require.NoError(t, err)

	assert.True(t, result.Verified)
	assert.Nil(t, result.OrderID)
	assert.Zero(t, store.markPaidCalls)
}

func TestVerifyPayment_OwnershipCheck(t *testing.T) {
	svc, store, _, _ := newTestService()
	store.orders[1] = models.Order{ID: 1, CustomerID: "cust-1"}

	sig := ComputeCheckoutSignature(testKeySecret, "order_o1", "pay_p1")
	_, err := svc.VerifyPayment(context.Background(), "order_o1", "pay_p1", sig, i64Ptr(1), "cust-2", "req-1")
	assert.ErrorIs(t, err, ErrOrderNotOwned)
}

func TestVerifyPayment_OrderNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	sig := ComputeCheckoutSignature(testKeySecret, "order_o1", "pay_p1")
	_, err := svc.VerifyPayment(context.Background(), "order_o1", "pay_p1", sig, i64Ptr(42), "cust-1", "req-1")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCreateGatewayOrder(t *testing.T) {
	svc, store, gateway, _ := newTestService()
	store.orders[1] = models.Order{ID: 1, CustomerID: "cust-1", TotalPrice: 123.45}

	id, err := svc.CreateGatewayOrder(context.Background(), 1, "cust-1", "req-1")
	require.NoError(t, err)
	assert.Equal(t, "order_rzp1", id)
	assert.Equal(t, []int64{12345}, gateway.createdOrders, "amount converted to paise")
	assert.Equal(t, "order_rzp1", *store.orders[1].RazorpayOrderID)

	// Idempotent: second call returns the stored id without a gateway call
	again, err := svc.CreateGatewayOrder(context.Background(), 1, "cust-1", "req-2")
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Len(t, gateway.createdOrders, 1)
}

func TestCreateGatewayOrder_GatewayFailure(t *testing.T) {
	svc, store, gateway, _ := newTestService()
	store.orders[1] = models.Order{ID: 1, CustomerID: "cust-1", TotalPrice: 10}
	gateway.err = fmt.Errorf("%w: connection refused", ErrExternalService)

	_, err := svc.CreateGatewayOrder(context.Background(), 1, "cust-1", "req-1")
	assert.ErrorIs(t, err, ErrExternalService)
	assert.Nil(t, store.orders[1].RazorpayOrderID)
}

func webhookBody(t *testing.T, event, paymentID, orderID string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"event": event,
		"payload": map[string]interface{}{
			"payment": map[string]interface{}{
				"entity": map[string]interface{}{
					"id":       paymentID,
					"order_id": orderID,
					"status":   "captured",
				},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func TestHandleWebhook_Captured(t *testing.T) {
	svc, store, _, notifier := newTestService()
	store.orders[1] = models.Order{ID: 1, CustomerID: "cust-1",
		PaymentStatus: models.PaymentPending, RazorpayOrderID: strPtr("order_o1")}

	body := webhookBody(t, "payment.captured", "pay_p1", "order_o1")
	sig := ComputeWebhookSignature(testWebhookSecret, body)

	require.NoError(t, svc.HandleWebhook(context.Background(), body, sig, "req-1"))
	assert.Equal(t, models.PaymentCompleted, store.orders[1].PaymentStatus)
	assert.Equal(t, "pay_p1", *store.orders[1].RazorpayPaymentID)
	require.Len(t, notifier.published, 1)
	assert.Equal(t, string(models.PaymentCompleted), notifier.published[0].PaymentStatus)
}

func TestHandleWebhook_FailedAndRefunded(t *testing.T) {
	svc, store, _, _ := newTestService()
	store.orders[1] = models.Order{ID: 1, RazorpayOrderID: strPtr("order_o1")}

	body := webhookBody(t, "payment.failed", "pay_p1", "order_o1")
	require.NoError(t, svc.HandleWebhook(context.Background(), body, ComputeWebhookSignature(testWebhookSecret, body), "req-1"))
	assert.Equal(t, models.PaymentFailed, store.orders[1].PaymentStatus)

	body = webhookBody(t, "payment.refunded", "pay_p1", "order_o1")
	require.NoError(t, svc.HandleWebhook(context.Background(), body, ComputeWebhookSignature(testWebhookSecret, body), "req-2"))
	assert.Equal(t, models.PaymentRefunded, store.orders[1].PaymentStatus)
}

func TestHandleWebhook_BadSignature(t *testing.T) {
	svc, store, _, _ := newTestService()
	store.orders[1] = models.Order{ID: 1, PaymentStatus: models.PaymentPending, RazorpayOrderID: strPtr("order_o1")}

	body := webhookBody(t, "payment.captured", "pay_p1", "order_o1")
	err := svc.HandleWebhook(context.Background(), body, "deadbeef", "req-1")
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Equal(t, models.PaymentPending, store.orders[1].PaymentStatus)
}

func TestHandleWebhook_SignedWithCheckoutSecretRejected(t *testing.T) {
	svc, _, _, _ := newTestService()

	body := webhookBody(t, "payment.captured", "pay_p1", "order_o1")
	err := svc.HandleWebhook(context.Background(), body, ComputeWebhookSignature(testKeySecret, body), "req-1")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestHandleWebhook_UnknownEventIgnored(t *testing.T) {
	svc, store, _, notifier := newTestService()
	store.orders[1] = models.Order{ID: 1, PaymentStatus: models.PaymentPending, RazorpayOrderID: strPtr("order_o1")}

	body := webhookBody(t, "order.paid", "pay_p1", "order_o1")
	require.NoError(t, svc.HandleWebhook(context.Background(), body, ComputeWebhookSignature(testWebhookSecret, body), "req-1"))
	assert.Equal(t, models.PaymentPending, store.orders[1].PaymentStatus)
	assert.Empty(t, notifier.published)
}

func TestRefund(t *testing.T) {
	svc, store, gateway, notifier := newTestService()
	store.orders[1] = models.Order{ID: 1, PaymentStatus: models.PaymentCompleted,
		RazorpayOrderID: strPtr("order_o1"), RazorpayPaymentID: strPtr("pay_p1")}

	refundID, err := svc.Refund(context.Background(), "pay_p1", nil, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "rfnd_1", refundID)
	assert.Equal(t, []string{"pay_p1"}, gateway.refunds)
	assert.Equal(t, models.PaymentRefunded, store.orders[1].PaymentStatus)
	require.Len(t, notifier.published, 1)
	assert.Equal(t, string(models.PaymentRefunded), notifier.published[0].PaymentStatus)
}

func TestRefund_NotCompleted(t *testing.T) {
	svc, store, gateway, _ := newTestService()
	store.orders[1] = models.Order{ID: 1, PaymentStatus: models.PaymentPending,
		RazorpayPaymentID: strPtr("pay_p1")}

	_, err := svc.Refund(context.Background(), "pay_p1", nil, "req-1")
	assert.ErrorIs(t, err, ErrNotRefundable)
	assert.Empty(t, gateway.refunds)
}

func TestRefund_UnknownPayment(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Refund(context.Background(), "pay_unknown", nil, "req-1")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestRefund_GatewayFailureLeavesStatus(t *testing.T) {
	svc, store, gateway, _ := newTestService()
	store.orders[1] = models.Order{ID: 1, PaymentStatus: models.PaymentCompleted,
		RazorpayPaymentID: strPtr("pay_p1")}
	gateway.err = errors.Join(ErrExternalService, errors.New("timeout"))

	_, err := svc.Refund(context.Background(), "pay_p1", nil, "req-1")
	assert.ErrorIs(t, err, ErrExternalService)
	assert.Equal(t, models.PaymentCompleted, store.orders[1].PaymentStatus)
}

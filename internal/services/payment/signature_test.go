package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckoutSignature(t *testing.T) {
	secret := "test-key-secret"
	sig := ComputeCheckoutSignature(secret, "order_o1", "pay_p1")

	assert.True(t, checkoutSignatureValid(secret, "order_o1", "pay_p1", sig))
	assert.False(t, checkoutSignatureValid(secret, "order_o1", "pay_p2", sig))
	assert.False(t, checkoutSignatureValid(secret, "order_o2", "pay_p1", sig))
	assert.False(t, checkoutSignatureValid("other-secret", "order_o1", "pay_p1", sig))
	assert.False(t, checkoutSignatureValid(secret, "order_o1", "pay_p1", ""))
	assert.False(t, checkoutSignatureValid(secret, "order_o1", "pay_p1", "deadbeef"))
}

func TestCheckoutSignature_SingleBitFlip(t *testing.T) {
	secret := "test-key-secret"
	sig := ComputeCheckoutSignature(secret, "order_o1", "pay_p1")

	// Flip one bit in every hex digit position
	for i := 0; i < len(sig); i++ {
		tampered := []byte(sig)
		tampered[i] ^= 0x01
		assert.False(t, checkoutSignatureValid(secret, "order_o1", "pay_p1", string(tampered)),
			"tampered signature at position %d must fail", i)
	}
}

func TestWebhookSignature(t *testing.T) {
	secret := "test-webhook-secret"
	body := []byte(`{"event":"payment.captured"}`)
	sig := ComputeWebhookSignature(secret, body)

	assert.True(t, webhookSignatureValid(secret, body, sig))
	assert.False(t, webhookSignatureValid(secret, []byte(`{"event":"payment.failed"}`), sig))
	assert.False(t, webhookSignatureValid("wrong-secret", body, sig))
}

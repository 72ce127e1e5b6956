package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ComputeCheckoutSignature returns the hex HMAC-SHA256 the gateway issues for
// a successful checkout: the key secret over "<order_id>|<payment_id>".
func ComputeCheckoutSignature(secret, gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// checkoutSignatureValid compares the supplied signature against the expected
// one in constant time.
func checkoutSignatureValid(secret, gatewayOrderID, gatewayPaymentID, signature string) bool {
	expected := ComputeCheckoutSignature(secret, gatewayOrderID, gatewayPaymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ComputeWebhookSignature returns the hex HMAC-SHA256 of a raw webhook body
// under the dedicated webhook secret.
func ComputeWebhookSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookSignatureValid(secret string, body []byte, signature string) bool {
	expected := ComputeWebhookSignature(secret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}

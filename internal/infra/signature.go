package infra

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// SignPayment returns the lowercase hex HMAC-SHA256 the provider attaches
// to a completed checkout.
func SignPayment(secret, providerOrderID, providerPaymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(providerOrderID + "|" + providerPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifySignature(secret, providerOrderID, providerPaymentID, signature string) bool {
	expected := SignPayment(secret, providerOrderID, providerPaymentID)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

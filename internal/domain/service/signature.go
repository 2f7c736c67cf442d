package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureVerifier checks the payment gateway's proof that a payment
// completed: HMAC-SHA256 over "orderRef|paymentRef" with a server-held
// secret, hex encoded. The comparison is constant-time.
type SignatureVerifier struct {
	secret []byte
}

func NewSignatureVerifier(secret string) *SignatureVerifier {
	return &SignatureVerifier{secret: []byte(secret)}
}

func (v *SignatureVerifier) Verify(gatewayOrderRef, gatewayPaymentRef, signature string) bool {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(gatewayOrderRef + "|" + gatewayPaymentRef))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the expected signature for a reference pair. Used by
// tests and by sandbox tooling; production signatures come from the
// gateway.
func (v *SignatureVerifier) Sign(gatewayOrderRef, gatewayPaymentRef string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(gatewayOrderRef + "|" + gatewayPaymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

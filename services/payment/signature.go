package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"prepbook/models"
)

// HMACVerifier recomputes hex(HMAC-SHA256(secret, orderId + "|" + paymentId)).
// Proofs are issued by the payment webhook relay, which receives the gateway's capture
// event and signs it with the shared secret. Stripe itself never produces this signature,
// so callers also read the order back through OrderLookup before trusting it.
type HMACVerifier struct {
	Secret string
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{Secret: secret}
}

// Sign returns the expected signature for an order/payment pair.
func (v *HMACVerifier) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(v.Secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (v *HMACVerifier) Verify(proof models.PaymentProof) bool {
	if v.Secret == "" || proof.OrderID == "" || proof.PaymentID == "" || proof.Signature == "" {
		return false
	}
	expected := v.Sign(proof.OrderID, proof.PaymentID)
	return hmac.Equal([]byte(expected), []byte(proof.Signature))
}

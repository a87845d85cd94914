package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the hex HMAC-SHA256 of "{gatewayOrderID}|{paymentID}" with
// the gateway key secret. This is the callback signature contract.
func Sign(gatewayOrderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether got matches the expected signature for
// the id pair, in constant time. Any mismatch is terminal for the caller;
// there is no retry path.
func VerifySignature(gatewayOrderID, paymentID, secret, got string) bool {
	want := Sign(gatewayOrderID, paymentID, secret)
	return hmac.Equal([]byte(want), []byte(got))
}

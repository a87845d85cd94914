package payment

import "testing"

func TestVerifySignature(t *testing.T) {
	secret := "webhook-secret"
	sig := Sign("order_abc123", "pay_def456", secret)

	if !VerifySignature("order_abc123", "pay_def456", secret, sig) {
		t.Fatal("valid signature rejected")
	}

	if VerifySignature("order_abc123", "pay_def456", "wrong-secret", sig) {
		t.Fatal("signature accepted under the wrong secret")
	}

	if VerifySignature("order_abc123", "pay_def456", secret, sig[:len(sig)-1]+"0") {
		t.Fatal("corrupted signature accepted")
	}

	if VerifySignature("order_abc123", "pay_def456", secret, "") {
		t.Fatal("empty signature accepted")
	}
}

// Both ids are individually valid here; only their positions are swapped.
// The pipe-delimited message must make that fail.
func TestVerifySignatureSwappedIDs(t *testing.T) {
	secret := "webhook-secret"
	sig := Sign("order_abc123", "pay_def456", secret)

	if VerifySignature("pay_def456", "order_abc123", secret, sig) {
		t.Fatal("signature accepted with order and payment ids swapped")
	}
}

func TestSignIsDeterministicPerInput(t *testing.T) {
	secret := "webhook-secret"

	if Sign("a", "b", secret) != Sign("a", "b", secret) {
		t.Fatal("same input produced different signatures")
	}
	if Sign("a", "b", secret) == Sign("a", "c", secret) {
		t.Fatal("different payment ids produced the same signature")
	}
	// "ab|c" vs "a|bc" must differ even though the concatenation matches.
	if Sign("ab", "c", secret) == Sign("a", "bc", secret) {
		t.Fatal("delimiter does not separate the id fields")
	}
}

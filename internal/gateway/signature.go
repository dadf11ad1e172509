package gateway

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
)

// SignatureFields are the webhook fields covered by the Atmos signature, in
// wire order. Missing fields contribute the empty string.
type SignatureFields struct {
	StoreID       string
	TransactionID string
	Invoice       string
	Amount        string
}

// ComputeSignature returns the lowercase hex md5 digest over the
// concatenation store_id + transaction_id + invoice + amount + secret.
//
// md5 here is the gateway's wire format, not a security choice: the
// concatenation order and hash are fixed by the Atmos webhook contract.
func ComputeSignature(fields SignatureFields, secret string) string {
	payload := fields.StoreID + fields.TransactionID + fields.Invoice + fields.Amount + secret
	sum := md5.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// VerifySignature compares the computed digest against the signature
// supplied in the webhook payload in constant time.
func VerifySignature(fields SignatureFields, secret, providedSignature string) bool {
	expected := ComputeSignature(fields, secret)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(providedSignature)) == 1
}

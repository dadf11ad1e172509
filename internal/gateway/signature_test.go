package gateway

import (
	"crypto/md5"
	"encoding/hex"
	"testing"
)

func TestComputeSignature(t *testing.T) {
	fields := SignatureFields{
		StoreID:       "1981",
		TransactionID: "123456",
		Invoice:       "order-42",
		Amount:        "500000",
	}
	secret := "test-api-key"

	sum := md5.Sum([]byte("1981" + "123456" + "order-42" + "500000" + secret))
	expected := hex.EncodeToString(sum[:])

	got := ComputeSignature(fields, secret)
	if got != expected {
		t.Errorf("Expected signature %s, got %s", expected, got)
	}
}

func TestComputeSignature_EmptyFields(t *testing.T) {
	// Missing fields contribute the empty string, not a panic
	got := ComputeSignature(SignatureFields{}, "secret")

	sum := md5.Sum([]byte("secret"))
	expected := hex.EncodeToString(sum[:])
	if got != expected {
		t.Errorf("Expected signature %s, got %s", expected, got)
	}
}

func TestVerifySignature(t *testing.T) {
	fields := SignatureFields{
		StoreID:       "1981",
		TransactionID: "123456",
		Invoice:       "order-42",
		Amount:        "500000",
	}
	secret := "test-api-key"
	sign := ComputeSignature(fields, secret)

	if !VerifySignature(fields, secret, sign) {
		t.Error("Expected valid signature to verify")
	}
}

func TestVerifySignature_Rejects(t *testing.T) {
	fields := SignatureFields{
		StoreID:       "1981",
		TransactionID: "123456",
		Invoice:       "order-42",
		Amount:        "500000",
	}
	secret := "test-api-key"
	sign := ComputeSignature(fields, secret)

	tests := []struct {
		name   string
		fields SignatureFields
		secret string
		sign   string
	}{
		{"wrong secret", fields, "other-key", sign},
		{"tampered amount", SignatureFields{StoreID: "1981", TransactionID: "123456", Invoice: "order-42", Amount: "1"}, secret, sign},
		{"tampered invoice", SignatureFields{StoreID: "1981", TransactionID: "123456", Invoice: "order-43", Amount: "500000"}, secret, sign},
		{"empty signature", fields, secret, ""},
		{"garbage signature", fields, secret, "not-a-digest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifySignature(tt.fields, tt.secret, tt.sign) {
				t.Error("Expected signature verification to fail")
			}
		})
	}
}

// config/secrets_test.go
package config

import (
	"strings"
	"testing"
)

func TestProtectorRoundTrip(t *testing.T) {
	protector, err := NewProtector([]byte("master-secret"))
	if err != nil {
		t.Fatalf("NewProtector() error = %v", err)
	}

	encrypted, err := protector.Protect("the-api-key")
	if err != nil {
		t.Fatalf("Protect() error = %v", err)
	}
	if strings.Contains(encrypted, "the-api-key") {
		t.Error("ciphertext contains the plaintext")
	}

	decrypted, err := protector.Unprotect(encrypted)
	if err != nil {
		t.Fatalf("Unprotect() error = %v", err)
	}
	if decrypted != "the-api-key" {
		t.Errorf("Unprotect() = %q; want the-api-key", decrypted)
	}
}

func TestProtectorNoncesVary(t *testing.T) {
	protector, err := NewProtector([]byte("master-secret"))
	if err != nil {
		t.Fatalf("NewProtector() error = %v", err)
	}

	a, _ := protector.Protect("same-plaintext")
	b, _ := protector.Protect("same-plaintext")
	if a == b {
		t.Error("two encryptions of the same plaintext produced identical output")
	}
}

func TestProtectorWrongSecret(t *testing.T) {
	protectorA, _ := NewProtector([]byte("secret-a"))
	protectorB, _ := NewProtector([]byte("secret-b"))

	encrypted, err := protectorA.Protect("value")
	if err != nil {
		t.Fatalf("Protect() error = %v", err)
	}
	if _, err := protectorB.Unprotect(encrypted); err == nil {
		t.Error("Unprotect() succeeded under a different master secret")
	}
}

func TestProtectorRejectsGarbage(t *testing.T) {
	protector, _ := NewProtector([]byte("master-secret"))

	for _, input := range []string{"", "not-base64!!", "c2hvcnQ="} {
		if _, err := protector.Unprotect(input); err == nil {
			t.Errorf("Unprotect(%q) succeeded; want error", input)
		}
	}
}

func TestGenerateAPIKey(t *testing.T) {
	a, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey() error = %v", err)
	}
	b, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey() error = %v", err)
	}
	if a == b {
		t.Error("two generated keys are identical")
	}
	if len(a) < 40 {
		t.Errorf("generated key %q looks too short", a)
	}
}

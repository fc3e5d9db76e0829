package backup

import (
	"bytes"
	"errors"
	"testing"
)

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if len(salt1) != saltSize {
		t.Errorf("salt length = %d, want %d", len(salt1), saltSize)
	}

	salt2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt 2: %v", err)
	}
	if bytes.Equal(salt1, salt2) {
		t.Error("two salts should not be equal")
	}
}

func TestDeriveKey(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := DeriveKey("mypassphrase", salt)
	key2 := DeriveKey("mypassphrase", salt)
	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase+salt should produce same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}
	if bytes.Equal(key1, DeriveKey("otherpassphrase", salt)) {
		t.Error("different passphrases should produce different keys")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	original := []byte(`{"family":{"name":"Smiths"}}`)

	encrypted, err := Encrypt(original, "test-passphrase-123")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Contains(encrypted, original) {
		t.Error("ciphertext should not contain the plaintext")
	}
	if len(encrypted) <= saltSize+nonceSize {
		t.Fatalf("ciphertext length = %d", len(encrypted))
	}

	decrypted, err := Decrypt(encrypted, "test-passphrase-123")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(original, decrypted) {
		t.Error("decrypted content should match original")
	}
}

func TestEncryptUsesFreshSalt(t *testing.T) {
	a, err := Encrypt([]byte("same"), "passphrase")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	b, err := Encrypt([]byte("same"), "passphrase")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Equal(a[:saltSize], b[:saltSize]) {
		t.Error("each encryption should use its own salt")
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	encrypted, err := Encrypt([]byte("secret data"), "correct-password")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := Decrypt(encrypted, "wrong-password"); err == nil {
		t.Fatal("expected error with wrong passphrase")
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	encrypted, err := Encrypt([]byte("secret data"), "password")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	encrypted[saltSize+nonceSize+1] ^= 0xFF

	if _, err := Decrypt(encrypted, "password"); err == nil {
		t.Fatal("expected error with tampered ciphertext")
	}
}

func TestEncryptDecryptEmpty(t *testing.T) {
	encrypted, err := Encrypt(nil, "password")
	if err != nil {
		t.Fatalf("encrypt empty: %v", err)
	}
	decrypted, err := Decrypt(encrypted, "password")
	if err != nil {
		t.Fatalf("decrypt empty: %v", err)
	}
	if len(decrypted) != 0 {
		t.Errorf("expected empty plaintext, got %d bytes", len(decrypted))
	}
}

func TestDecryptTooShort(t *testing.T) {
	_, err := Decrypt([]byte("too short"), "password")
	if !errors.Is(err, ErrCiphertextTooShort) {
		t.Fatalf("err = %v, want ErrCiphertextTooShort", err)
	}
}

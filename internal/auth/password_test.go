package auth

import (
	"errors"
	"testing"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("Hash must not equal the plain password")
	}

	if err := ComparePassword(hash, "correct horse battery"); err != nil {
		t.Errorf("ComparePassword() rejected the correct password: %v", err)
	}
	if err := ComparePassword(hash, "wrong password"); err == nil {
		t.Error("ComparePassword() accepted a wrong password")
	}
}

func TestHashPassword_Empty(t *testing.T) {
	if _, err := HashPassword(""); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("Expected ErrEmptyPassword, got %v", err)
	}
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}
	h2, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}

	if h1 == h2 {
		t.Error("Two hashes of the same password must differ")
	}
	if err := ComparePassword(h2, "same input"); err != nil {
		t.Errorf("Second hash should still verify: %v", err)
	}
}

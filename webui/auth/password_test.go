package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() = %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") {
		t.Errorf("hash = %q, want bcrypt format", hash)
	}

	if err := VerifyPassword("correct horse battery staple", hash); err != nil {
		t.Errorf("VerifyPassword(correct) = %v", err)
	}
	if err := VerifyPassword("wrong", hash); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("VerifyPassword(wrong) = %v, want ErrPasswordMismatch", err)
	}
}

func TestHashPassword_Empty(t *testing.T) {
	if _, err := HashPassword(""); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("HashPassword(\"\") = %v, want ErrEmptyPassword", err)
	}
}

func TestVerifyPassword_Errors(t *testing.T) {
	if err := VerifyPassword("", "$2a$12$whatever"); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("empty password = %v, want ErrEmptyPassword", err)
	}
	if err := VerifyPassword("pw", ""); !errors.Is(err, ErrInvalidHash) {
		t.Errorf("empty hash = %v, want ErrInvalidHash", err)
	}
	if err := VerifyPassword("pw", "not-a-hash"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("garbage hash = %v, want ErrPasswordMismatch", err)
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	a, err := HashPassword("same password")
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashPassword("same password")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two hashes of the same password are identical")
	}
}

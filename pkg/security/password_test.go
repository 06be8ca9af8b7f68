package security_test

import (
	"testing"

	"github.com/cafeconecta/cafeconecta-backend/pkg/config"
	"github.com/cafeconecta/cafeconecta-backend/pkg/security"
)

func testParams() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	encoded, err := security.HashPassword("grão-forte-123", testParams())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	ok, err := security.VerifyPassword("grão-forte-123", encoded)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("expected matching password to verify")
	}

	ok, err = security.VerifyPassword("wrong", encoded)
	if err != nil {
		t.Fatalf("verify wrong: %v", err)
	}
	if ok {
		t.Fatal("expected mismatching password to fail")
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	if _, err := security.VerifyPassword("x", "not-a-hash"); err != security.ErrInvalidHash {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	if _, err := security.HashPassword("", testParams()); err == nil {
		t.Fatal("expected error for empty password")
	}
}

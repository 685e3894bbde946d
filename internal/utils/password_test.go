package utils

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret-pass", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret-pass" {
		t.Fatal("password stored in plain text")
	}
	if !VerifyPassword(hash, "secret-pass") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong-pass") {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordZeroCostFallsBack(t *testing.T) {
	hash, err := HashPassword("secret-pass", 0)
	if err != nil {
		t.Fatalf("HashPassword with zero cost: %v", err)
	}
	if !VerifyPassword(hash, "secret-pass") {
		t.Error("hash from fallback cost did not verify")
	}
}

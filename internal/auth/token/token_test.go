package token

import "testing"

func TestGenerateRandomTokenIsUnique(t *testing.T) {
	a, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("GenerateRandomToken() error = %v", err)
	}
	b, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("GenerateRandomToken() error = %v", err)
	}
	if a == b {
		t.Fatal("two generated tokens are identical")
	}
	if a == "" {
		t.Fatal("generated token is empty")
	}
}

func TestHashSHA256IsDeterministic(t *testing.T) {
	if HashSHA256("abc") != HashSHA256("abc") {
		t.Fatal("same input produced different hashes")
	}
	if HashSHA256("abc") == HashSHA256("abd") {
		t.Fatal("different inputs produced the same hash")
	}
	if len(HashSHA256("abc")) != 64 {
		t.Fatalf("hash length = %d, want 64 hex chars", len(HashSHA256("abc")))
	}
}

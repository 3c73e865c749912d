package auth

import "testing"

func TestGenerateResetToken(t *testing.T) {
	token, hash, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken failed: %v", err)
	}
	if len(token) != 2*resetTokenBytes {
		t.Errorf("Expected a %d character token, got %d", 2*resetTokenBytes, len(token))
	}
	if len(hash) != 64 || hash != HashResetToken(token) {
		t.Errorf("Expected the stored hash to be the SHA-256 of the token, got %q", hash)
	}
	if hash == token {
		t.Error("Expected the stored hash to differ from the emailed token")
	}

	other, _, err := GenerateResetToken()
	if err != nil {
		t.Fatalf("GenerateResetToken failed: %v", err)
	}
	if other == token {
		t.Error("Expected two tokens to differ")
	}
}

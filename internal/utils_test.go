package internal

import "testing"

func TestHashKey(t *testing.T) {
	if HashKey("ab", "c") == HashKey("a", "bc") {
		t.Error("HashKey should separate parts")
	}
	if len(HashKey("x")) != 32 {
		t.Errorf("HashKey length = %d, want 32", len(HashKey("x")))
	}
	if HashKey("x", "y") != HashKey("x", "y") {
		t.Error("HashKey should be deterministic")
	}
}

package ratelimit

import (
	"testing"
)

func TestAllowWithinBurst(t *testing.T) {
	krl := New(1, 3)
	defer krl.Stop()

	for i := range 3 {
		if !krl.Allow("10.0.0.1") {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
	if krl.Allow("10.0.0.1") {
		t.Fatal("request beyond burst should be rejected")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	if !krl.Allow("10.0.0.1") {
		t.Fatal("first key should be allowed")
	}
	if krl.Allow("10.0.0.1") {
		t.Fatal("first key should now be exhausted")
	}
	if !krl.Allow("10.0.0.2") {
		t.Fatal("second key has its own bucket")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	krl := New(1, 1)
	krl.Stop()
	krl.Stop()
}

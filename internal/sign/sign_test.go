package sign

import (
	"strings"
	"testing"
	"time"
)

func TestHeaderFormatMatchesSpec(t *testing.T) {
	h := Header([]byte(`{"a":1}`), "key1", "secret")
	if !strings.HasPrefix(h, "v=1; alg=hmac-sha256; key=key1; sig=") {
		t.Fatalf("unexpected header: %s", h)
	}
}

func TestVerifyRoundTrips(t *testing.T) {
	payload := []byte(`{"a":1}`)
	h := Header(payload, "key1", "secret")
	if !Verify(h, payload, "secret") {
		t.Fatal("expected verification to succeed")
	}
	if Verify(h, payload, "wrong-secret") {
		t.Fatal("expected verification to fail with wrong secret")
	}
	if Verify(h, []byte(`{"a":2}`), "secret") {
		t.Fatal("expected verification to fail with tampered payload")
	}
}

func TestVerifyTimestampRejectsStaleSignatures(t *testing.T) {
	now := time.Now()
	fresh := now.Add(-1 * time.Minute)
	stale := now.Add(-10 * time.Minute)
	if !VerifyTimestamp(fresh.UnixMilli(), now) {
		t.Fatal("expected fresh timestamp to pass")
	}
	if VerifyTimestamp(stale.UnixMilli(), now) {
		t.Fatal("expected stale timestamp to fail")
	}
}

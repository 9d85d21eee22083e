// Package sign signs a canonical payload with HMAC-SHA256 and verifies
// the resulting header, including a skew-window check on its
// timestamp. HMAC-SHA256 is standard library here — see DESIGN.md for
// why no third-party wrapper is used.
package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SkewWindow is the maximum age of a signed timestamp a verifier accepts.
const SkewWindow = 5 * time.Minute

// Header formats the signature header:
// "v=1; alg=hmac-sha256; key=<kid>; sig=<base64url(signature)>".
func Header(payload []byte, keyID, secret string) string {
	sig := sum(payload, secret)
	return fmt.Sprintf("v=1; alg=hmac-sha256; key=%s; sig=%s", keyID, base64.RawURLEncoding.EncodeToString(sig))
}

func sum(payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return mac.Sum(nil)
}

// Verify checks a header against a freshly computed signature for the
// given payload and secret, using a constant-time comparison.
func Verify(header string, payload []byte, secret string) bool {
	fields := parseHeader(header)
	sigField, ok := fields["sig"]
	if !ok {
		return false
	}
	got, err := base64.RawURLEncoding.DecodeString(sigField)
	if err != nil {
		return false
	}
	want := sum(payload, secret)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// VerifyTimestamp rejects signatures whose carried millisecond timestamp
// is older than SkewWindow relative to now.
func VerifyTimestamp(timestampMillis int64, now time.Time) bool {
	ts := time.UnixMilli(timestampMillis)
	age := now.Sub(ts)
	return age >= 0 && age <= SkewWindow
}

func parseHeader(header string) map[string]string {
	out := map[string]string{}
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		out[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return out
}

// FormatTimestamp renders t as the millisecond timestamp a signed
// response may additionally carry.
func FormatTimestamp(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

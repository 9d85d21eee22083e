package canon

import (
	"strings"
	"testing"

	"github.com/ldcrun/ldc/internal/document"
	"github.com/ldcrun/ldc/internal/sign"
)

func parseDoc(t *testing.T, src string) document.Value {
	t.Helper()
	v, err := document.ParseJSON(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// TestMarshalSortsKeysRegardlessOfInputOrder checks the canonicalizer's
// core promise: two documents differing only in key order canonicalize
// to identical bytes.
func TestMarshalSortsKeysRegardlessOfInputOrder(t *testing.T) {
	a := parseDoc(t, `{"z":1,"a":2,"m":{"y":3,"b":4}}`)
	b := parseDoc(t, `{"a":2,"m":{"b":4,"y":3},"z":1}`)

	ab, err := Marshal(a)
	if err != nil {
		t.Fatalf("Marshal(a) failed: %v", err)
	}
	bb, err := Marshal(b)
	if err != nil {
		t.Fatalf("Marshal(b) failed: %v", err)
	}
	if string(ab) != string(bb) {
		t.Fatalf("key-order-permuted documents canonicalized differently:\n%s\nvs\n%s", ab, bb)
	}
	if !Equal(a, b) {
		t.Fatal("Equal should treat key-order permutations as equal")
	}
}

// TestSignatureStableAcrossKeyOrderPermutation ties the canonicalizer
// to the signer: the HMAC header for two key-order permutations of the
// same document must match, since both sign the same canonical bytes.
func TestSignatureStableAcrossKeyOrderPermutation(t *testing.T) {
	a := parseDoc(t, `{"total":115000,"revenue":100000,"growth":0.15}`)
	b := parseDoc(t, `{"growth":0.15,"revenue":100000,"total":115000}`)

	pa, err := Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	pb, err := Marshal(b)
	if err != nil {
		t.Fatal(err)
	}

	ha := sign.Header(pa, "key1", "secret")
	hb := sign.Header(pb, "key1", "secret")
	if ha != hb {
		t.Fatalf("signatures differ across key-order permutation:\n%s\nvs\n%s", ha, hb)
	}
	if !sign.Verify(ha, pb, "secret") {
		t.Fatal("signature over one permutation should verify against the other's canonical bytes")
	}
}

package walkhash_test

import (
	"strings"
	"testing"

	"github.com/fulmenhq/walktree/walkhash"
)

func TestHashDeterministic(t *testing.T) {
	data := []byte("the quick brown fox")

	d1, err := walkhash.Hash(data, walkhash.XXH3_128)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	d2, err := walkhash.Hash(data, walkhash.XXH3_128)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if d1.String() != d2.String() {
		t.Fatalf("hash not deterministic: %s vs %s", d1.String(), d2.String())
	}
	if !strings.HasPrefix(d1.String(), "xxh3-128:") {
		t.Fatalf("String() = %q, want xxh3-128: prefix", d1.String())
	}
}

func TestHashSHA256(t *testing.T) {
	d, err := walkhash.Hash([]byte("abc"), walkhash.SHA256)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	want := "sha256:ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if d.String() != want {
		t.Fatalf("String() = %q, want %q", d.String(), want)
	}
}

func TestHashUnsupportedAlgorithm(t *testing.T) {
	if _, err := walkhash.Hash([]byte("x"), walkhash.Algorithm("md5")); err == nil {
		t.Fatalf("expected error for unsupported algorithm")
	}
}

func TestHashReaderMatchesHash(t *testing.T) {
	data := []byte("stream me")
	byBytes, err := walkhash.Hash(data, walkhash.SHA256)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	byReader, err := walkhash.HashReader(strings.NewReader(string(data)), walkhash.SHA256)
	if err != nil {
		t.Fatalf("HashReader: %v", err)
	}
	if byBytes.String() != byReader.String() {
		t.Fatalf("Hash/HashReader disagree: %s vs %s", byBytes.String(), byReader.String())
	}
}

func TestParseDigestRoundTrip(t *testing.T) {
	d, err := walkhash.Hash([]byte("roundtrip"), walkhash.XXH3_128)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	parsed, err := walkhash.ParseDigest(d.String())
	if err != nil {
		t.Fatalf("ParseDigest: %v", err)
	}
	if parsed.String() != d.String() {
		t.Fatalf("ParseDigest round-trip mismatch: %s vs %s", parsed.String(), d.String())
	}
}

func TestParseDigestInvalidFormat(t *testing.T) {
	if _, err := walkhash.ParseDigest("not-a-digest"); err == nil {
		t.Fatalf("expected error for malformed digest string")
	}
}

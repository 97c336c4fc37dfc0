package utils

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"
)

func TestMD5HexMatchesStdlib(t *testing.T) {
	data := []byte("the quick brown fox")
	sum := md5.Sum(data)
	want := hex.EncodeToString(sum[:])
	if got := MD5Hex(data); got != want {
		t.Fatalf("MD5Hex = %q, want %q", got, want)
	}
}

func TestMD5HexReaderMatchesMD5Hex(t *testing.T) {
	data := []byte("streamed checksum input")
	r := strings.NewReader(string(data))

	sum, n, err := MD5HexReader(r)
	if err != nil {
		t.Fatalf("MD5HexReader: %v", err)
	}
	if n != int64(len(data)) {
		t.Fatalf("n = %d, want %d", n, len(data))
	}
	if want := MD5Hex(data); sum != want {
		t.Fatalf("sum = %q, want %q", sum, want)
	}
}

func TestMD5HexReaderEmpty(t *testing.T) {
	sum, n, err := MD5HexReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("MD5HexReader: %v", err)
	}
	if n != 0 {
		t.Fatalf("n = %d, want 0", n)
	}
	want := hex.EncodeToString(md5.New().Sum(nil))
	if sum != want {
		t.Fatalf("sum = %q, want %q", sum, want)
	}
}

package utils

import (
	"crypto/md5"
	"encoding/hex"
	"io"
)

// MD5Hex returns the lowercase hex MD5 digest of b, the wire format
// the endpoints of §6 exchange checksums in.
func MD5Hex(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

// MD5HexReader streams r through MD5, returning the lowercase hex
// digest and the number of bytes read.
func MD5HexReader(r io.Reader) (string, int64, error) {
	h := md5.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

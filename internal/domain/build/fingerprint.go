package build

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// Fingerprint identifies the content of one emitted file.
type Fingerprint struct {
	Size int64  `json:"size"`
	Hash string `json:"hash"`
}

func FingerprintBytes(data []byte) Fingerprint {
	sum := sha256.Sum256(data)
	return Fingerprint{Size: int64(len(data)), Hash: hex.EncodeToString(sum[:])}
}

func FingerprintFile(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint{Size: n, Hash: hex.EncodeToString(h.Sum(nil))}, nil
}

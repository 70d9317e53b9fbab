package utils

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// MaxSignatureBytes bounds a decoded signature image
const MaxSignatureBytes = 2 << 20

// Signature decoding errors
var (
	ErrSignatureEmpty    = errors.New("signature is empty")
	ErrSignatureEncoding = errors.New("signature is not valid base64")
	ErrSignatureFormat   = errors.New("signature is not a PNG image")
	ErrSignatureTooLarge = errors.New("signature image is too large")
)

// DecodeSignature decodes a base64 PNG, accepting an optional data URL prefix
func DecodeSignature(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if i := strings.Index(encoded, ","); i >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[i+1:]
	}
	if encoded == "" {
		return nil, ErrSignatureEmpty
	}
	if base64.StdEncoding.DecodedLen(len(encoded)) > MaxSignatureBytes {
		return nil, ErrSignatureTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// Some canvases emit unpadded output
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
		if err != nil {
			return nil, ErrSignatureEncoding
		}
	}
	if !bytes.HasPrefix(data, pngMagic) {
		return nil, ErrSignatureFormat
	}
	return data, nil
}

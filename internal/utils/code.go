package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// GenerateCode returns a six digit code drawn uniformly from [100000, 999999].
// The fixed range keeps every code six digits wide without padding.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

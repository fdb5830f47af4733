package booking

import (
	"crypto/rand"
	"fmt"
)

const (
	pnrLength = 6
	// 32 symbols without 0/O and 1/I, so every random byte maps evenly.
	pnrAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

func NewPNR() (string, error) {
	buf := make([]byte, pnrLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate pnr: %w", err)
	}
	for i, b := range buf {
		buf[i] = pnrAlphabet[int(b)%len(pnrAlphabet)]
	}
	return string(buf), nil
}

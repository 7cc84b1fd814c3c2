package helpers

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	lowerChars   = "abcdefghijkmnopqrstuvwxyz"
	upperChars   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	digitChars   = "23456789"
	specialChars = "!@#$%&*?"
)

// GenerateTemporaryPassword returns a random password of length n containing
// at least one lowercase, uppercase, digit and special character.
func GenerateTemporaryPassword(n int) (string, error) {
	if n < 8 {
		return "", errors.New("temporary password must be at least 8 characters")
	}
	classes := []string{lowerChars, upperChars, digitChars, specialChars}
	all := lowerChars + upperChars + digitChars + specialChars

	out := make([]byte, n)
	for i := range out {
		set := all
		if i < len(classes) {
			set = classes[i]
		}
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		out[i] = c
	}
	// shuffle so the guaranteed classes are not always first
	for i := len(out) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		k := int(j.Int64())
		out[i], out[k] = out[k], out[i]
	}
	return string(out), nil
}

func randomChar(set string) (byte, error) {
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[idx.Int64()], nil
}

package impostor

import (
	"crypto/rand"
	"strings"
)

const (
	codeLength   = 5
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeAttempts = 32
)

// newRoomCode returns a random code of codeLength characters from codeAlphabet,
// rejecting bytes that would bias the distribution.
func newRoomCode() string {
	const limit = byte(255 - (256 % len(codeAlphabet)))

	out := make([]byte, 0, codeLength)
	buf := make([]byte, codeLength*2)

	for len(out) < codeLength {
		if _, err := rand.Read(buf); err != nil {
			panic(err)
		}

		for _, b := range buf {
			if b <= limit {
				out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
				if len(out) == codeLength {
					return string(out)
				}
			}
		}
	}

	return string(out)
}

// NormalizeCode trims and upper-cases a user-entered room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether code has the shape of a room code.
func ValidCode(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(codeAlphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}

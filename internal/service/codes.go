package service

import (
	"crypto/rand"
	"strings"

	"github.com/google/uuid"
)

// Excludes 0/O, 1/I and lowercase so codes survive handwriting and manual
// entry from a QR fallback.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 8

func newID() string {
	return uuid.NewString()
}

func generateCode() string {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process has bigger problems.
		panic(err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}

// normalizeCode uppercases and strips everything outside A-Z0-9, so a code
// copied as "ab3d-ef2g" still matches "AB3DEF2G".
func normalizeCode(code string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(code) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func codesMatch(entered, issued string) bool {
	normalized := normalizeCode(entered)
	return normalized != "" && normalized == normalizeCode(issued)
}

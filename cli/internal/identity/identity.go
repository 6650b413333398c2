// Package identity builds the local chat author label. Labels are "<name>#<suffix>"
// with a short random suffix; nothing checks them for uniqueness.
package identity

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	suffixLen = 5
	alphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"

	// Anonymous is sent when no identity has been set.
	Anonymous = "Anonymous"
)

// New returns name with a fresh random suffix.
func New(name string) string {
	return strings.TrimSpace(name) + "#" + suffix()
}

func suffix() string {
	var b strings.Builder
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < suffixLen; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			b.WriteByte(alphabet[0])
			continue
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String()
}

// Or returns user, or Anonymous when it is empty.
func Or(user string) string {
	if user == "" {
		return Anonymous
	}
	return user
}

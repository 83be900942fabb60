// Package idgen provides the identifier strategies used when posting
// values to a store.
package idgen

import (
	"crypto/rand"
	"math/bits"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUID returns a Generator of random (version 4) UUID strings, 36
// characters long.
func UUID() Generator {
	return uuid.NewString
}

// UUIDv7 returns a Generator of time-ordered UUID strings.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// NanoID returns a Generator of random base-36 IDs of the given length.
func NanoID(length int) Generator {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	return func() string {
		buf := make([]byte, length)
		if _, err := rand.Read(buf); err != nil {
			panic("idgen: crypto/rand failed: " + err.Error())
		}
		for i := range buf {
			buf[i] = alphabet[int(buf[i])%len(alphabet)]
		}
		return string(buf)
	}
}

// Lex returns a Generator of IDs counting up from start whose
// lexicographic order matches their numeric order.
//
// The format is a letter giving the number of hex digits ('a' = 1) then
// the digits: 0 -> "a0", 255 -> "bff", 256 -> "c100".
func Lex(start uint64) Generator {
	var n atomic.Uint64
	n.Store(start)
	return func() string {
		return FormatLex(n.Add(1) - 1)
	}
}

func FormatLex(n uint64) string {
	digits := 1
	if n > 0 {
		digits = (bits.Len64(n) + 3) / 4
	}
	return string(rune('a'+digits-1)) + strconv.FormatUint(n, 16)
}

// Prefixed prepends prefix to every ID of gen.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Default is the strategy behind the "uuid" post query.
var Default Generator = UUID()

// IsUUID reports whether s is a well-formed UUID.
func IsUUID(s string) bool {
	return uuid.Validate(s) == nil
}

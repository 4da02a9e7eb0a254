// Package roomid generates sortable room identifiers: a UUIDv7 encoded
// as 26 characters of Crockford base32. Lexical order follows creation
// time, so room listings and log lines sort chronologically for free.
package roomid

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// RandSource supplies the random tail of an id. Injected by tests; nil
// selects crypto/rand.
type RandSource interface {
	IntN(n int) int
}

// Generator produces room ids with a configurable randomness source.
type Generator struct {
	src RandSource
}

// NewGenerator creates a generator. A nil source uses crypto/rand.
func NewGenerator(src RandSource) *Generator {
	return &Generator{src: src}
}

// New creates a room id from the default generator.
func New() string {
	return NewGenerator(nil).New()
}

// New creates a fresh room id.
func (g *Generator) New() string {
	return encodeBase32(g.uuidV7())
}

// uuidV7 lays out a 128-bit UUIDv7: 48-bit millisecond timestamp, then
// version and variant bits over random fill.
func (g *Generator) uuidV7() [16]byte {
	var id [16]byte

	now := time.Now().UnixMilli()
	id[0] = byte(now >> 40)
	id[1] = byte(now >> 32)
	id[2] = byte(now >> 24)
	id[3] = byte(now >> 16)
	id[4] = byte(now >> 8)
	id[5] = byte(now)

	if g.src != nil {
		for i := 6; i < 16; i++ {
			id[i] = byte(g.src.IntN(256))
		}
	} else {
		if _, err := rand.Read(id[6:]); err != nil {
			panic("roomid: reading random bytes: " + err.Error())
		}
	}

	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}

// encodeBase32 packs 128 bits into 26 base32 characters, five bits per
// character, left-aligned so the timestamp prefix stays in front.
func encodeBase32(data [16]byte) string {
	var b strings.Builder
	b.Grow(26)
	for i := 0; i < 26; i++ {
		bitOffset := i * 5
		byteIndex := bitOffset / 8
		bitIndex := bitOffset % 8

		var value uint8
		if byteIndex < 16 {
			if bitIndex <= 3 {
				value = (data[byteIndex] >> (3 - bitIndex)) & 0x1f
			} else {
				value = (data[byteIndex] << (bitIndex - 3)) & 0x1f
				if byteIndex+1 < 16 {
					value |= data[byteIndex+1] >> (11 - bitIndex)
				}
			}
		}
		b.WriteByte(alphabet[value])
	}
	return b.String()
}

// Validate reports whether an id could have come from New: 26 characters
// of the base32 alphabet with a timestamp-range first character.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("room id must be 26 characters, got %d", len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("room id first character %q out of range", id[0])
	}
	for i := 0; i < len(id); i++ {
		if !strings.ContainsRune(alphabet, rune(id[i])) {
			return fmt.Errorf("room id contains invalid character %q", id[i])
		}
	}
	return nil
}

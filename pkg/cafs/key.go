package cafs

import (
	"encoding/hex"
	"fmt"

	blake2b "github.com/minio/blake2b-simd"
)

const (
	// KeySize for blake2b algo
	KeySize = blake2b.Size

	// KeySizeHex for hex representation of a key
	KeySizeHex = 2 * KeySize
)

// Key type for content addressed keys
type Key [KeySize]byte

// NewKey creates a new key from raw hash data
func NewKey(data []byte) (Key, error) {
	var k Key
	n := copy(k[:], data)
	if n != KeySize {
		return Key{}, &BadKeySize{Key: data}
	}
	return k, nil
}

// MustNewKey creates a new key from raw hash data but panics if there is an error
func MustNewKey(data []byte) Key {
	k, e := NewKey(data)
	if e != nil {
		panic(e.Error())
	}
	return k
}

// KeyFromContent computes the key of some content
func KeyFromContent(content []byte) Key {
	return Key(blake2b.Sum512(content))
}

// ParseKey reads a key from its hex representation
func ParseKey(s string) (Key, error) {
	if len(s) != KeySizeHex {
		return Key{}, &BadKeySize{Key: []byte(s)}
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return Key{}, err
	}
	return NewKey(data)
}

// Verify that some content matches this key
func (k Key) Verify(content []byte) bool {
	return KeyFromContent(content) == k
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// BadKeySize is an error that's returned when the key to create has an invalid size.
type BadKeySize struct {
	Key []byte
}

func (b *BadKeySize) Error() string {
	return fmt.Sprintf("%x has invalid size of %d, expected %d", b.Key, len(b.Key), KeySize)
}

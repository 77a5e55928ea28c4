package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// AddressLength is the size in bytes of an Aptos account address.
const AddressLength = 32

// ed25519Scheme is the authentication key scheme byte appended to the public
// key before hashing.
const ed25519Scheme byte = 0x00

// aip80Prefix is the optional prefix used by Aptos tooling when exporting
// ed25519 private keys.
const aip80Prefix = "ed25519-priv-"

var (
	ErrInvalidAddress    = errors.New("crypto: invalid address")
	ErrInvalidPrivateKey = errors.New("crypto: invalid private key")
)

// Address is a 32-byte Aptos account address.
type Address [AddressLength]byte

// ZeroAddress is the all-zero address. It never identifies a deployed module.
var ZeroAddress Address

// ParseAddress decodes a hex address with or without a leading 0x. Short forms
// such as "0x1" or "abc" are left padded with zeros to the full width.
func ParseAddress(value string) (Address, error) {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")
	if trimmed == "" {
		return Address{}, fmt.Errorf("%w: empty", ErrInvalidAddress)
	}
	if len(trimmed) > AddressLength*2 {
		return Address{}, fmt.Errorf("%w: %q is longer than %d bytes", ErrInvalidAddress, value, AddressLength)
	}
	if len(trimmed)%2 == 1 {
		trimmed = "0" + trimmed
	}
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, value, err)
	}
	var out Address
	copy(out[AddressLength-len(decoded):], decoded)
	return out, nil
}

// MustParseAddress is ParseAddress for package level constants and tests.
func MustParseAddress(value string) Address {
	addr, err := ParseAddress(value)
	if err != nil {
		panic(err)
	}
	return addr
}

// String renders the canonical long form: 0x followed by 64 lowercase hex digits.
func (a Address) String() string {
	return hexutil.Encode(a[:])
}

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	out := make([]byte, AddressLength)
	copy(out, a[:])
	return out
}

// IsZero reports whether the address is all zeros.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler and accepts the same
// forms as ParseAddress.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// --- Key Management ---

type PrivateKey struct {
	key ed25519.PrivateKey
}

type PublicKey struct {
	key ed25519.PublicKey
}

// GeneratePrivateKey creates a fresh random key. It is only used by the
// explicit account derivation helpers; clients never create keys on their own.
func GeneratePrivateKey() (*PrivateKey, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromSeed builds a key from a 32-byte ed25519 seed.
func PrivateKeyFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPrivateKey, ed25519.SeedSize, len(seed))
	}
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// PrivateKeyFromHex parses a hex encoded seed. The 0x and ed25519-priv-
// prefixes are both optional.
func PrivateKeyFromHex(value string) (*PrivateKey, error) {
	trimmed := strings.TrimSpace(value)
	trimmed = strings.TrimPrefix(trimmed, aip80Prefix)
	trimmed = strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPrivateKey)
	}
	seed, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	return PrivateKeyFromSeed(seed)
}

// Bytes returns the 32-byte seed.
func (k *PrivateKey) Bytes() []byte {
	return k.key.Seed()
}

// Hex returns the seed in the AIP-80 export format.
func (k *PrivateKey) Hex() string {
	return aip80Prefix + hexutil.Encode(k.key.Seed())
}

func (k *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{key: k.key.Public().(ed25519.PublicKey)}
}

// Sign produces an ed25519 signature over message.
func (k *PrivateKey) Sign(message []byte) []byte {
	return ed25519.Sign(k.key, message)
}

// Bytes returns the 32-byte public key.
func (k *PublicKey) Bytes() []byte {
	out := make([]byte, len(k.key))
	copy(out, k.key)
	return out
}

// Hex returns the 0x prefixed public key.
func (k *PublicKey) Hex() string {
	return hexutil.Encode(k.key)
}

// Verify checks an ed25519 signature.
func (k *PublicKey) Verify(message, signature []byte) bool {
	return ed25519.Verify(k.key, message, signature)
}

// AuthenticationKey is SHA3-256(public key || scheme). For accounts that
// never rotated their key it equals the account address.
func (k *PublicKey) AuthenticationKey() [32]byte {
	buf := make([]byte, 0, len(k.key)+1)
	buf = append(buf, k.key...)
	buf = append(buf, ed25519Scheme)
	return sha3.Sum256(buf)
}

func (k *PublicKey) Address() Address {
	return Address(k.AuthenticationKey())
}

package crypto

import (
	"errors"
	"fmt"
)

// Account binds a private key to the on-chain address it authorizes. Accounts
// are supplied by callers and held for the lifetime of a client.
type Account struct {
	key     *PrivateKey
	address Address
}

// NewAccount derives the address from the key's authentication key.
func NewAccount(key *PrivateKey) (*Account, error) {
	if key == nil {
		return nil, errors.New("crypto: nil private key")
	}
	return &Account{key: key, address: key.PubKey().Address()}, nil
}

// NewAccountWithAddress binds key to an explicit address, for accounts whose
// authentication key was rotated away from the original key.
func NewAccountWithAddress(key *PrivateKey, address Address) (*Account, error) {
	if key == nil {
		return nil, errors.New("crypto: nil private key")
	}
	if address.IsZero() {
		return nil, fmt.Errorf("%w: zero address", ErrInvalidAddress)
	}
	return &Account{key: key, address: address}, nil
}

// AccountFromHex parses a hex private key and derives its account.
func AccountFromHex(value string) (*Account, error) {
	key, err := PrivateKeyFromHex(value)
	if err != nil {
		return nil, err
	}
	return NewAccount(key)
}

// GenerateAccount creates an account around a fresh random key.
func GenerateAccount() (*Account, error) {
	key, err := GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return NewAccount(key)
}

func (a *Account) Address() Address {
	return a.address
}

func (a *Account) PublicKey() *PublicKey {
	return a.key.PubKey()
}

// PrivateKey exposes the key for export by the account helper command.
func (a *Account) PrivateKey() *PrivateKey {
	return a.key
}

// Sign signs an Aptos signing message.
func (a *Account) Sign(message []byte) ([]byte, error) {
	if a == nil || a.key == nil {
		return nil, errors.New("crypto: account has no key")
	}
	return a.key.Sign(message), nil
}

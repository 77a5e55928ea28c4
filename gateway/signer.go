package gateway

import "aptoslend/crypto"

// Signer authorizes transactions. *crypto.Account implements it.
type Signer interface {
	Address() crypto.Address
	PublicKey() *crypto.PublicKey
	Sign(message []byte) ([]byte, error)
}

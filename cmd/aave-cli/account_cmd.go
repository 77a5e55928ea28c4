package main

import (
	"io"

	"aptoslend/config"
	"aptoslend/crypto"
)

type accountView struct {
	Address    string `json:"address"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key,omitempty"`
}

var generateAccount = crypto.GenerateAccount

// runAccountCommand prints the address a key controls. It never contacts the
// node.
func runAccountCommand(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("account", "[--key hex | --generate]", stderr)
	var (
		key      string
		generate bool
	)
	fs.StringVar(&key, "key", "", "ed25519 private key (defaults to AAVE_ACCOUNT_PRIVATE_KEY)")
	fs.BoolVar(&generate, "generate", false, "create a new random key and print it")
	if !parseFlags(fs, args, stderr) {
		return 1
	}

	var (
		account *crypto.Account
		err     error
	)
	if generate {
		account, err = generateAccount()
	} else {
		account, err = resolveAccount(config.RoleAccount, key)
	}
	if err != nil {
		return printError(stderr, err)
	}

	view := accountView{
		Address:   account.Address().String(),
		PublicKey: account.PublicKey().Hex(),
	}
	if generate {
		view.PrivateKey = account.PrivateKey().Hex()
	}
	return writeJSON(stdout, view)
}

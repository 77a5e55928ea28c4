// Package keysource resolves role signing keys for the command line tools.
package keysource

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"aptoslend/config"
	"aptoslend/crypto"

	"golang.org/x/term"
)

// Terminal hooks, replaced in tests.
var (
	stdinFD      = func() int { return int(os.Stdin.Fd()) }
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// Source lazily resolves the signing account for one role. The key comes from
// the explicit flag value, then the role's environment variable, and finally
// an interactive prompt when stdin is a terminal. The account is cached after
// the first successful resolution.
type Source struct {
	role     config.Role
	explicit string
	prompt   io.Writer

	once    sync.Once
	account *crypto.Account
	err     error
}

// New constructs a source for role. explicit is usually a --key flag value and
// may be empty.
func New(role config.Role, explicit string) *Source {
	return &Source{role: role, explicit: explicit, prompt: os.Stderr}
}

// Role returns the role the source resolves.
func (s *Source) Role() config.Role {
	return s.role
}

// Account returns the resolved account.
func (s *Source) Account() (*crypto.Account, error) {
	s.once.Do(func() {
		key, err := s.lookup()
		if err != nil {
			s.err = err
			return
		}
		account, err := crypto.AccountFromHex(key)
		if err != nil {
			s.err = fmt.Errorf("%s key: %w", s.role, err)
			return
		}
		s.account = account
	})
	return s.account, s.err
}

func (s *Source) lookup() (string, error) {
	key, err := config.RoleKey(s.role, s.explicit)
	if err == nil {
		return key, nil
	}
	var cfgErr *config.ConfigError
	if !errors.As(err, &cfgErr) || !isTerminal(stdinFD()) {
		return "", err
	}

	fmt.Fprintf(s.prompt, "Enter %s private key: ", strings.ReplaceAll(string(s.role), "_", " "))
	raw, readErr := readPassword(stdinFD())
	fmt.Fprintln(s.prompt)
	if readErr != nil {
		return "", fmt.Errorf("read %s key: %w", s.role, readErr)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

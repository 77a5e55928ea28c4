package keysource

import (
	"bytes"
	"errors"
	"testing"

	"aptoslend/config"
	"aptoslend/crypto"

	"github.com/stretchr/testify/require"
)

const testKey = "0x9bf49a6a0755f953811fce125f2683d50429c3bb49e074147e0089a52eae155f"

func stubTerminal(t *testing.T, tty bool, input string, readErr error) *int {
	t.Helper()
	origTTY, origRead, origFD := isTerminal, readPassword, stdinFD
	t.Cleanup(func() {
		isTerminal, readPassword, stdinFD = origTTY, origRead, origFD
	})
	prompts := 0
	stdinFD = func() int { return 0 }
	isTerminal = func(int) bool { return tty }
	readPassword = func(int) ([]byte, error) {
		prompts++
		return []byte(input), readErr
	}
	return &prompts
}

func expectedAddress(t *testing.T) crypto.Address {
	account, err := crypto.AccountFromHex(testKey)
	require.NoError(t, err)
	return account.Address()
}

func TestExplicitKeyWins(t *testing.T) {
	t.Setenv(config.RolePoolAdmin.EnvVar(), "0x01")
	prompts := stubTerminal(t, true, "", nil)

	account, err := New(config.RolePoolAdmin, testKey).Account()
	require.NoError(t, err)
	require.Equal(t, expectedAddress(t), account.Address())
	require.Zero(t, *prompts)
}

func TestEnvironmentKey(t *testing.T) {
	t.Setenv(config.RoleAccount.EnvVar(), testKey)
	stubTerminal(t, false, "", nil)

	src := New(config.RoleAccount, "")
	first, err := src.Account()
	require.NoError(t, err)
	second, err := src.Account()
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, config.RoleAccount, src.Role())
}

func TestMissingKeyWithoutTerminal(t *testing.T) {
	t.Setenv(config.RoleOracle.EnvVar(), "")
	stubTerminal(t, false, "", nil)

	_, err := New(config.RoleOracle, "").Account()
	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "AAVE_ORACLE_PRIVATE_KEY", cfgErr.Key)
}

func TestPromptsOnTerminal(t *testing.T) {
	t.Setenv(config.RoleUnderlyingTokens.EnvVar(), "")
	prompts := stubTerminal(t, true, testKey+"\n", nil)

	src := New(config.RoleUnderlyingTokens, "")
	var out bytes.Buffer
	src.prompt = &out
	account, err := src.Account()
	require.NoError(t, err)
	require.Equal(t, expectedAddress(t), account.Address())
	require.Equal(t, 1, *prompts)
	require.Contains(t, out.String(), "underlying tokens private key")
}

func TestPromptFailures(t *testing.T) {
	t.Setenv(config.RolePoolAdmin.EnvVar(), "")

	stubTerminal(t, true, "", errors.New("tty closed"))
	src := New(config.RolePoolAdmin, "")
	src.prompt = &bytes.Buffer{}
	_, err := src.Account()
	require.ErrorContains(t, err, "tty closed")

	stubTerminal(t, true, "   ", nil)
	src = New(config.RolePoolAdmin, "")
	src.prompt = &bytes.Buffer{}
	_, err = src.Account()
	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestMalformedKey(t *testing.T) {
	stubTerminal(t, false, "", nil)
	_, err := New(config.RoleAccount, "not-hex").Account()
	require.ErrorIs(t, err, crypto.ErrInvalidPrivateKey)
}

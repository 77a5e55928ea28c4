package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aptoslend/crypto"
	"aptoslend/observability"
)

var (
	testPackage = crypto.MustParseAddress("0x20")
	testSeed    = "0x9bf49a6a0755f953811fce125f2683d50429c3bb49e074147e0089a52eae155f"
)

// fakeNode is an in-memory fullnode that serves the handful of endpoints the
// client uses.
type fakeNode struct {
	mu          sync.Mutex
	t           *testing.T
	sequence    uint64
	viewResult  []any
	viewStatus  int
	viewBody    map[string]any
	lastSigned  map[string]any
	signingMsg  []byte
	pendingPoll int
	success     bool
	vmStatus    string
	authHeader  string
	requestIDs  []string
}

func newFakeNode(t *testing.T) (*fakeNode, *httptest.Server) {
	t.Helper()
	node := &fakeNode{t: t, sequence: 7, success: true, vmStatus: "Executed successfully", signingMsg: []byte("signing-message")}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			node.mu.Lock()
			node.authHeader = req.Header.Get("Authorization")
			node.requestIDs = append(node.requestIDs, req.Header.Get("X-Request-ID"))
			node.mu.Unlock()
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/v1", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"chain_id":         4,
			"ledger_version":   "1200",
			"ledger_timestamp": "1700000000000000",
			"block_height":     "600",
		})
	})
	r.Post("/v1/view", node.handleView)
	r.Get("/v1/accounts/{addr}", func(w http.ResponseWriter, _ *http.Request) {
		node.mu.Lock()
		defer node.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"sequence_number": "7", "authentication_key": "0x0"})
	})
	r.Post("/v1/transactions/encode_submission", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, hexutil.Encode(node.signingMsg))
	})
	r.Post("/v1/transactions", node.handleSubmit)
	r.Get("/v1/transactions/wait_by_hash/{hash}", node.handleWait)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return node, srv
}

func (n *fakeNode) handleView(w http.ResponseWriter, req *http.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()
	raw := map[string]any{}
	if err := json.NewDecoder(req.Body).Decode(&raw); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	n.viewBody = raw
	if n.viewStatus != 0 {
		writeJSON(w, n.viewStatus, map[string]any{
			"message":       "Move abort in 0x20::pool: 0x10001",
			"error_code":    "vm_error",
			"vm_error_code": 4016,
		})
		return
	}
	writeJSON(w, http.StatusOK, n.viewResult)
}

func (n *fakeNode) handleSubmit(w http.ResponseWriter, req *http.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var body map[string]any
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	n.lastSigned = body
	sig, _ := body["signature"].(map[string]any)
	assert.Equal(n.t, "ed25519_signature", sig["type"])
	pub, err := hexutil.Decode(sig["public_key"].(string))
	assert.NoError(n.t, err)
	signature, err := hexutil.Decode(sig["signature"].(string))
	assert.NoError(n.t, err)
	key, err := crypto.PrivateKeyFromHex(testSeed)
	assert.NoError(n.t, err)
	assert.Equal(n.t, key.PubKey().Bytes(), pub)
	assert.True(n.t, key.PubKey().Verify(n.signingMsg, signature))
	writeJSON(w, http.StatusAccepted, map[string]any{"hash": "0xfeed", "type": "pending_transaction"})
}

func (n *fakeNode) handleWait(w http.ResponseWriter, req *http.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pendingPoll > 0 {
		n.pendingPoll--
		if n.pendingPoll%2 == 0 {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Transaction not found", "error_code": "transaction_not_found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"type": "pending_transaction", "hash": chi.URLParam(req, "hash")})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"type":      "user_transaction",
		"hash":      chi.URLParam(req, "hash"),
		"version":   "1201",
		"success":   n.success,
		"vm_status": n.vmStatus,
		"gas_used":  "42",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, url string, opts ...Option) (*Client, *observability.GatewayMetrics) {
	t.Helper()
	metrics := observability.NewGatewayMetrics(prometheus.NewRegistry())
	opts = append([]Option{
		WithMetrics(metrics),
		WithPollInterval(time.Millisecond),
		WithClock(func() time.Time { return time.Unix(1_700_000_000, 0) }),
	}, opts...)
	client, err := NewClient(url+"/v1/", opts...)
	require.NoError(t, err)
	return client, metrics
}

func testAccount(t *testing.T) *crypto.Account {
	t.Helper()
	acct, err := crypto.AccountFromHex(testSeed)
	require.NoError(t, err)
	return acct
}

func TestViewEncodesArgumentsAsStrings(t *testing.T) {
	node, srv := newFakeNode(t)
	node.viewResult = []any{"1000000000000000000000", "17", true}
	client, metrics := newTestClient(t, srv.URL)

	call := Call{
		Function: FunctionRef{Address: testPackage, Module: "pool", Name: "get_user_account_data"},
		Params:   []TypeTag{TypeAddress, TypeU64, TypeU256},
		Args: []Value{
			Address(crypto.MustParseAddress("0xabc")),
			U64(100),
			U256(new(big.Int).Lsh(big.NewInt(1), 200)),
		},
	}
	res, err := client.View(context.Background(), call)
	require.NoError(t, err)
	require.NoError(t, res.Expect(3))

	require.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000020::pool::get_user_account_data", node.viewBody["function"])
	require.Equal(t, []any{}, node.viewBody["type_arguments"])
	args := node.viewBody["arguments"].([]any)
	require.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000abc", args[0])
	require.Equal(t, "100", args[1])
	require.Equal(t, new(big.Int).Lsh(big.NewInt(1), 200).String(), args[2])

	first, err := res.BigInt(0)
	require.NoError(t, err)
	require.Equal(t, "1000000000000000000000", first.String())
	second, err := res.Uint64(1)
	require.NoError(t, err)
	require.Equal(t, uint64(17), second)
	flag, err := res.Bool(2)
	require.NoError(t, err)
	require.True(t, flag)

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests().WithLabelValues("view", "pool::get_user_account_data", "ok")))
}

func TestViewRejectsBadArgumentsLocally(t *testing.T) {
	node, srv := newFakeNode(t)
	client, metrics := newTestClient(t, srv.URL)

	_, err := client.View(context.Background(), Call{
		Function: FunctionRef{Address: testPackage, Module: "pool", Name: "get_reserve_data"},
		Params:   []TypeTag{TypeAddress},
		Args:     []Value{U64(1)},
	})
	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
	require.Equal(t, 0, argErr.Index)
	require.Nil(t, node.viewBody, "no request should reach the node")
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests().WithLabelValues("view", "pool::get_reserve_data", "argument_error")))
}

func TestViewSurfacesMoveAbort(t *testing.T) {
	node, srv := newFakeNode(t)
	node.viewStatus = http.StatusBadRequest
	client, _ := newTestClient(t, srv.URL)

	_, err := client.View(context.Background(), Call{
		Function: FunctionRef{Address: testPackage, Module: "underlying_token_factory", Name: "get_metadata_by_symbol"},
		Params:   []TypeTag{TypeString},
		Args:     []Value{String("NOPE")},
	})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.True(t, apiErr.IsMoveAbort())
	require.False(t, apiErr.IsNotFound())
	require.NotNil(t, apiErr.VMErrorCode)
	require.Equal(t, uint64(4016), *apiErr.VMErrorCode)
}

func TestSubmitSignsAndWaitsForCommit(t *testing.T) {
	node, srv := newFakeNode(t)
	node.pendingPoll = 3
	client, metrics := newTestClient(t, srv.URL, WithAPIKey("secret"), WithGas(5000, 150), WithExpiry(30*time.Second))
	acct := testAccount(t)

	receipt, err := client.Submit(context.Background(), acct, Call{
		Function: FunctionRef{Address: testPackage, Module: "supply_logic", Name: "supply"},
		Params:   []TypeTag{TypeAddress, TypeU256, TypeAddress, TypeU16},
		Args: []Value{
			Address(crypto.MustParseAddress("0xabc")),
			U256(big.NewInt(100)),
			Address(acct.Address()),
			U16(0),
		},
	})
	require.NoError(t, err)
	require.Equal(t, "0xfeed", receipt.Hash)
	require.Equal(t, uint64(1201), receipt.Version)
	require.Equal(t, uint64(42), receipt.GasUsed)
	require.True(t, receipt.Success)

	require.Equal(t, "Bearer secret", node.authHeader)
	require.Equal(t, acct.Address().String(), node.lastSigned["sender"])
	require.Equal(t, "7", node.lastSigned["sequence_number"])
	require.Equal(t, "5000", node.lastSigned["max_gas_amount"])
	require.Equal(t, "150", node.lastSigned["gas_unit_price"])
	require.Equal(t, "1700000030", node.lastSigned["expiration_timestamp_secs"])
	payload := node.lastSigned["payload"].(map[string]any)
	require.Equal(t, "entry_function_payload", payload["type"])
	require.Equal(t, []any{"0x0000000000000000000000000000000000000000000000000000000000000abc", "100", acct.Address().String(), "0"}, payload["arguments"])
	for _, id := range node.requestIDs {
		require.NotEmpty(t, id)
	}
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests().WithLabelValues("submit", "supply_logic::supply", "ok")))
}

func TestSubmitReportsExecutionFailure(t *testing.T) {
	node, srv := newFakeNode(t)
	node.success = false
	node.vmStatus = "Move abort in 0x20::supply_logic: EINVALID_AMOUNT(0x1)"
	client, metrics := newTestClient(t, srv.URL)

	receipt, err := client.Submit(context.Background(), testAccount(t), Call{
		Function: FunctionRef{Address: testPackage, Module: "supply_logic", Name: "supply"},
		Params:   []TypeTag{TypeAddress, TypeU256, TypeAddress, TypeU16},
		Args:     []Value{Address(testPackage), U256(big.NewInt(0)), Address(testPackage), U16(0)},
	})
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	require.Equal(t, "0xfeed", execErr.Hash)
	require.Contains(t, execErr.VMStatus, "EINVALID_AMOUNT")
	require.NotNil(t, receipt)
	require.False(t, receipt.Success)
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests().WithLabelValues("submit", "supply_logic::supply", "aborted")))
}

func TestSubmitWithoutSigner(t *testing.T) {
	_, srv := newFakeNode(t)
	client, _ := newTestClient(t, srv.URL)
	_, err := client.Submit(context.Background(), nil, Call{
		Function: FunctionRef{Address: testPackage, Module: "pool", Name: "set_user_emode"},
		Params:   []TypeTag{TypeU8},
		Args:     []Value{U8(1)},
	})
	require.True(t, errors.Is(err, ErrNoSigner))
}

func TestSubmitWrapsTransportFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"message": "overloaded"})
	}))
	t.Cleanup(srv.Close)
	client, _ := newTestClient(t, srv.URL)

	_, err := client.Submit(context.Background(), testAccount(t), Call{
		Function: FunctionRef{Address: testPackage, Module: "pool", Name: "set_user_emode"},
		Params:   []TypeTag{TypeU8},
		Args:     []Value{U8(1)},
	})
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	require.Equal(t, "sequence", subErr.Stage)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "overloaded", apiErr.Message)
}

func TestWaitHonoursContext(t *testing.T) {
	node, srv := newFakeNode(t)
	node.pendingPoll = 1 << 30
	client, _ := newTestClient(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.WaitForTransaction(ctx, "0xfeed")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChainInfo(t *testing.T) {
	_, srv := newFakeNode(t)
	client, _ := newTestClient(t, srv.URL)
	info, err := client.ChainInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint8(4), info.ChainID)
	require.Equal(t, uint64(1200), info.LedgerVersion)
	require.Equal(t, uint64(600), info.BlockHeight)
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient("  ")
	require.Error(t, err)
}

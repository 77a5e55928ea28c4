package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"aptoslend/crypto"
)

const (
	kindView   = "view"
	kindSubmit = "submit"

	entryFunctionPayload = "entry_function_payload"
	pendingTransaction   = "pending_transaction"
	signatureEd25519     = "ed25519_signature"
)

// Receipt describes a committed transaction.
type Receipt struct {
	Hash     string
	Version  uint64
	Success  bool
	VMStatus string
	GasUsed  uint64
}

type viewRequest struct {
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []Value  `json:"arguments"`
}

type entryPayload struct {
	Type          string   `json:"type"`
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []Value  `json:"arguments"`
}

type transactionRequest struct {
	Sender                  string       `json:"sender"`
	SequenceNumber          string       `json:"sequence_number"`
	MaxGasAmount            string       `json:"max_gas_amount"`
	GasUnitPrice            string       `json:"gas_unit_price"`
	ExpirationTimestampSecs string       `json:"expiration_timestamp_secs"`
	Payload                 entryPayload `json:"payload"`
}

type transactionSignature struct {
	Type      string `json:"type"`
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

type signedTransaction struct {
	transactionRequest
	Signature transactionSignature `json:"signature"`
}

type pendingResponse struct {
	Hash string `json:"hash"`
}

type transactionResponse struct {
	Type     string `json:"type"`
	Hash     string `json:"hash"`
	Version  string `json:"version"`
	Success  bool   `json:"success"`
	VMStatus string `json:"vm_status"`
	GasUsed  string `json:"gas_used"`
}

type accountResponse struct {
	SequenceNumber string `json:"sequence_number"`
}

// View evaluates a read-only function and returns its decoded JSON values.
func (c *Client) View(ctx context.Context, call Call) (res Result, err error) {
	name := call.Function.String()
	ctx, span := c.startSpan(ctx, kindView, call)
	start := time.Now()
	defer func() { c.finish(span, kindView, call, start, err) }()

	if err = call.Validate(); err != nil {
		return Result{}, err
	}
	req := viewRequest{
		Function:      name,
		TypeArguments: call.typeArguments(),
		Arguments:     call.arguments(),
	}
	var values []json.RawMessage
	if err = c.do(ctx, http.MethodPost, "/v1/view", req, &values); err != nil {
		var decErr *DecodingError
		if errors.As(err, &decErr) {
			decErr.Function = name
		}
		return Result{}, err
	}
	return Result{Function: name, Values: values}, nil
}

// Submit builds, signs and broadcasts an entry function transaction from
// signer and blocks until the node reports it committed. A committed but
// aborted transaction yields an ExecutionError.
func (c *Client) Submit(ctx context.Context, signer Signer, call Call) (receipt *Receipt, err error) {
	name := call.Function.String()
	ctx, span := c.startSpan(ctx, kindSubmit, call)
	start := time.Now()
	defer func() { c.finish(span, kindSubmit, call, start, err) }()

	if signer == nil {
		return nil, ErrNoSigner
	}
	if err = call.Validate(); err != nil {
		return nil, err
	}
	sender := signer.Address()
	span.SetAttributes(attribute.String("aptos.sender", sender.String()))

	seq, err := c.AccountSequence(ctx, sender)
	if err != nil {
		return nil, &SubmissionError{Function: name, Stage: "sequence", Err: err}
	}

	txn := transactionRequest{
		Sender:                  sender.String(),
		SequenceNumber:          strconv.FormatUint(seq, 10),
		MaxGasAmount:            strconv.FormatUint(c.maxGas, 10),
		GasUnitPrice:            strconv.FormatUint(c.gasUnitPrice, 10),
		ExpirationTimestampSecs: strconv.FormatInt(c.now().Add(c.expiry).Unix(), 10),
		Payload: entryPayload{
			Type:          entryFunctionPayload,
			Function:      name,
			TypeArguments: call.typeArguments(),
			Arguments:     call.arguments(),
		},
	}

	var encoded string
	if err = c.do(ctx, http.MethodPost, "/v1/transactions/encode_submission", txn, &encoded); err != nil {
		return nil, &SubmissionError{Function: name, Stage: "encode", Err: err}
	}
	message, err := hexutil.Decode(encoded)
	if err != nil {
		return nil, &SubmissionError{Function: name, Stage: "encode", Err: fmt.Errorf("signing message: %w", err)}
	}

	signature, err := signer.Sign(message)
	if err != nil {
		return nil, &SubmissionError{Function: name, Stage: "sign", Err: err}
	}
	pub := signer.PublicKey()
	if pub == nil {
		return nil, &SubmissionError{Function: name, Stage: "sign", Err: errors.New("signer has no public key")}
	}

	signed := signedTransaction{
		transactionRequest: txn,
		Signature: transactionSignature{
			Type:      signatureEd25519,
			PublicKey: pub.Hex(),
			Signature: hexutil.Encode(signature),
		},
	}
	var pending pendingResponse
	if err = c.do(ctx, http.MethodPost, "/v1/transactions", signed, &pending); err != nil {
		return nil, &SubmissionError{Function: name, Stage: "submit", Err: err}
	}
	if pending.Hash == "" {
		return nil, &SubmissionError{Function: name, Stage: "submit", Err: errors.New("node returned no transaction hash")}
	}
	span.SetAttributes(attribute.String("aptos.txn_hash", pending.Hash))

	receipt, err = c.WaitForTransaction(ctx, pending.Hash)
	if err != nil {
		return nil, err
	}
	if !receipt.Success {
		return receipt, &ExecutionError{Function: name, Hash: receipt.Hash, VMStatus: receipt.VMStatus}
	}
	return receipt, nil
}

// WaitForTransaction polls the node until hash is committed or ctx ends.
// Unknown hashes are retried since the node may not have indexed the
// transaction yet.
func (c *Client) WaitForTransaction(ctx context.Context, hash string) (*Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		var resp transactionResponse
		err := c.do(ctx, http.MethodGet, "/v1/transactions/wait_by_hash/"+hash, nil, &resp)
		switch {
		case err == nil && resp.Type != pendingTransaction:
			return resp.receipt(hash)
		case err != nil && !isNotFound(err):
			return nil, fmt.Errorf("wait for %s: %w", hash, err)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for %s: %w", hash, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (r transactionResponse) receipt(hash string) (*Receipt, error) {
	out := &Receipt{Hash: r.Hash, Success: r.Success, VMStatus: r.VMStatus}
	if out.Hash == "" {
		out.Hash = hash
	}
	var err error
	if r.Version != "" {
		if out.Version, err = parseUint64Field(r.Version); err != nil {
			return nil, &DecodingError{Function: "transaction " + hash, Index: -1, Err: fmt.Errorf("version: %w", err)}
		}
	}
	if r.GasUsed != "" {
		if out.GasUsed, err = parseUint64Field(r.GasUsed); err != nil {
			return nil, &DecodingError{Function: "transaction " + hash, Index: -1, Err: fmt.Errorf("gas_used: %w", err)}
		}
	}
	return out, nil
}

// AccountSequence returns the next sequence number of addr.
func (c *Client) AccountSequence(ctx context.Context, addr crypto.Address) (uint64, error) {
	var resp accountResponse
	if err := c.do(ctx, http.MethodGet, "/v1/accounts/"+addr.String(), nil, &resp); err != nil {
		return 0, err
	}
	seq, err := parseUint64Field(resp.SequenceNumber)
	if err != nil {
		return 0, &DecodingError{Function: "account " + addr.String(), Index: -1, Err: fmt.Errorf("sequence_number: %w", err)}
	}
	return seq, nil
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsNotFound()
}

func (c *Client) startSpan(ctx context.Context, kind string, call Call) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "aptos."+kind,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("aptos.function", call.Function.String()),
			attribute.Int("aptos.args", len(call.Args)),
		),
	)
}

func (c *Client) finish(span trace.Span, kind string, call Call, start time.Time, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	if c.metrics != nil {
		label := call.Function.Module + "::" + call.Function.Name
		c.metrics.Observe(kind, label, outcome(err), time.Since(start))
	}
}

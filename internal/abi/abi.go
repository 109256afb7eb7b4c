// Package abi declares the external collaborator interfaces a validator
// evaluation pipeline is driven by, with no concrete ledger, network, or
// wallet implementation in this module. Each interface is the documented
// extension point a host application (an emulator, a node, a wallet) wires
// in; internal/pipeline depends only on LoggerSink, never on the other
// three, matching the "out of scope, named with the interfaces they must
// expose" boundary.
package abi

import (
	"context"

	"github.com/scalus-go/scalus/internal/data"
)

// RedeemerPurpose names the ledger role a redeemer is evaluated under.
type RedeemerPurpose int

const (
	PurposeSpend RedeemerPurpose = iota
	PurposeMint
	PurposeCertify
	PurposeReward
	PurposeVote
	PurposePropose
)

func (p RedeemerPurpose) String() string {
	switch p {
	case PurposeSpend:
		return "Spend"
	case PurposeMint:
		return "Mint"
	case PurposeCertify:
		return "Certify"
	case PurposeReward:
		return "Reward"
	case PurposeVote:
		return "Vote"
	case PurposePropose:
		return "Propose"
	default:
		return "Unknown"
	}
}

// ProtocolVersion is the ledger-era/major-protocol-version pair that
// selects both the ScriptContext encoding and the lowering.Version in use.
type ProtocolVersion struct {
	Major int
	Minor int
}

// TxID is an opaque transaction identifier (a transaction hash).
type TxID [32]byte

// Transaction is the minimal shape a ScriptContextProducer needs to build
// a script's execution context: the fields named in the ledger's own
// transaction body that a redeemer's purpose can reference.
type Transaction struct {
	ID       TxID
	Body     []byte // CBOR-encoded transaction body, opaque to this module
	Redeemer data.Data
	Datum    data.Data // present only for spend-purpose redeemers with an inline/witnessed datum
}

// UTXOQuery selects the unspent outputs a BlockchainProvider should return.
type UTXOQuery struct {
	Address   string
	AssetUnit string // empty selects all assets
}

// UTXOEntry is one unspent transaction output.
type UTXOEntry struct {
	TxID      TxID
	Index     uint32
	Lovelace  uint64
	Assets    map[string]uint64 // policy-id.asset-name -> quantity
	DatumHash []byte
}

// ProtocolParams is the subset of ledger protocol parameters a pipeline
// needs to build an ExBudget and select a lowering.Version: the cost model
// itself is loaded separately via internal/costmodel.
type ProtocolParams struct {
	MaxTxExMem uint64
	MaxTxExCpu uint64
	Version    ProtocolVersion
}

// ScriptContextProducer builds the Data value a validator receives as its
// ScriptContext argument, given the transaction and the purpose the
// redeemer under evaluation is attached to.
type ScriptContextProducer interface {
	ScriptContext(purpose RedeemerPurpose, tx Transaction, version ProtocolVersion) (data.Data, error)
}

// BlockchainProvider is a read/write handle onto chain state: UTXO lookups,
// current protocol parameters and slot, and transaction submission.
type BlockchainProvider interface {
	FindUTXOs(ctx context.Context, q UTXOQuery) ([]UTXOEntry, error)
	ProtocolParams(ctx context.Context) (ProtocolParams, error)
	CurrentSlot(ctx context.Context) (uint64, error)
	Submit(ctx context.Context, tx []byte) (TxID, error)
}

// TransactionSigner produces witnesses for a serialized transaction body.
type TransactionSigner interface {
	Sign(ctx context.Context, tx []byte) ([]byte, error)
}

// LoggerSink receives one line of Trace output per call, in evaluation
// order. internal/pipeline's default implementation is an in-memory FIFO
// collector; a host application may instead forward each message to its
// own structured logger.
type LoggerSink interface {
	Append(message string)
}

package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Statement
// --------------------------------------------------------------------------

// Statement is a single SQL statement with its positional parameters.
// Parameters are wire scalars: nil, bool, numbers, text; blobs travel as
// base64 text (JSON convention). A Statement is immutable once constructed.
type Statement struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params,omitempty"`
}

// NewStatement creates a Statement from SQL text and positional parameters.
func NewStatement(sql string, params ...any) Statement {
	return Statement{SQL: sql, Params: params}
}

// --------------------------------------------------------------------------
// Request / Response Documents
// --------------------------------------------------------------------------

// Request is the document a client sends to the daemon. Every in-flight
// exchange carries a unique correlation ID; the matching Response echoes it.
type Request struct {
	// ID is the correlation token, unique per in-flight exchange. It doubles
	// as the replay-guard key: the daemon remembers recently completed IDs
	// and answers a retried ID from cache instead of re-executing.
	ID string `json:"id"`

	// Kind of the request
	Kind RequestKind `json:"kind"`

	// Statements to execute (Exec and ExecBatch only)
	Statements []Statement `json:"statements,omitempty"`

	// Mode selects the transaction semantics for ExecBatch
	Mode TransactionMode `json:"mode,omitempty"`

	// Op selects the maintenance operation (Maintenance only)
	Op MaintenanceOp `json:"op,omitempty"`
}

// Response is the document the daemon sends back. It correlates to exactly
// one Request by ID.
type Response struct {
	ID string `json:"id"`
	Ok bool   `json:"ok"`

	// Rev is a daemon-side request counter, incremented once per handled
	// request. Useful for spotting daemon restarts between calls.
	Rev uint64 `json:"rev,omitempty"`

	// RowsAffected is the total number of rows changed by the batch
	RowsAffected int64 `json:"rows_affected,omitempty"`

	// Succeeded is the number of statements that committed. In atomic mode
	// this is all-or-nothing; in per-statement mode it is exact.
	Succeeded int `json:"succeeded,omitempty"`

	// Columns and Rows carry the result of the last row-returning statement
	// in the batch, if any.
	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows,omitempty"`

	Error *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo describes a failure inside an otherwise well-formed exchange.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// StatementIndex is the zero-based index of the failing statement,
	// or -1 when the failure is not bound to a single statement.
	StatementIndex int `json:"statement_index"`
}

// --------------------------------------------------------------------------
// Document Factory Functions
// --------------------------------------------------------------------------

// NewExecRequest creates a single-statement request with per-statement
// commit semantics.
func NewExecRequest(id string, stmt Statement) *Request {
	return &Request{
		ID:         id,
		Kind:       KindExec,
		Statements: []Statement{stmt},
		Mode:       ModePerStatement,
	}
}

// NewExecBatchRequest creates a batch request with the given mode.
func NewExecBatchRequest(id string, stmts []Statement, mode TransactionMode) *Request {
	return &Request{
		ID:         id,
		Kind:       KindExecBatch,
		Statements: stmts,
		Mode:       mode,
	}
}

// NewPingRequest creates a liveness probe request.
func NewPingRequest(id string) *Request {
	return &Request{ID: id, Kind: KindPing}
}

// NewShutdownRequest creates a graceful shutdown request.
func NewShutdownRequest(id string) *Request {
	return &Request{ID: id, Kind: KindShutdown}
}

// NewDisconnectRequest creates a request that closes only the issuing
// connection; the daemon keeps running for other clients.
func NewDisconnectRequest(id string) *Request {
	return &Request{ID: id, Kind: KindDisconnect}
}

// NewMaintenanceRequest creates a maintenance request (checkpoint, close or
// reopen of the storage handle).
func NewMaintenanceRequest(id string, op MaintenanceOp) *Request {
	return &Request{ID: id, Kind: KindMaintenance, Op: op}
}

// NewOkResponse creates a success response for the given request ID.
func NewOkResponse(id string, rev uint64) *Response {
	return &Response{ID: id, Ok: true, Rev: rev}
}

// NewErrorResponse creates a failure response. statementIndex is -1 when the
// failure is not bound to a statement.
func NewErrorResponse(id string, rev uint64, code, message string, statementIndex int) *Response {
	return &Response{
		ID:  id,
		Ok:  false,
		Rev: rev,
		Error: &ErrorInfo{
			Code:           code,
			Message:        message,
			StatementIndex: statementIndex,
		},
	}
}

// --------------------------------------------------------------------------
// Request Kind Definition
// --------------------------------------------------------------------------

// RequestKind defines the kind of a Request.
type RequestKind uint8

const (
	KindUnknown RequestKind = iota

	KindExec        // Execute one statement, independent commit
	KindExecBatch   // Execute a batch of statements
	KindPing        // Liveness probe, never touches the storage engine
	KindShutdown    // Graceful daemon exit
	KindDisconnect  // Close this connection only
	KindMaintenance // Checkpoint / close / reopen the storage handle
)

// String returns the wire representation of a RequestKind.
func (k RequestKind) String() string {
	switch k {
	case KindExec:
		return "exec"
	case KindExecBatch:
		return "exec_batch"
	case KindPing:
		return "ping"
	case KindShutdown:
		return "shutdown"
	case KindDisconnect:
		return "disconnect"
	case KindMaintenance:
		return "maintenance"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaler interface for RequestKind.
// Kinds are serialized as strings on the wire.
func (k RequestKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for RequestKind.
func (k *RequestKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "exec":
		*k = KindExec
	case "exec_batch":
		*k = KindExecBatch
	case "ping":
		*k = KindPing
	case "shutdown":
		*k = KindShutdown
	case "disconnect":
		*k = KindDisconnect
	case "maintenance":
		*k = KindMaintenance
	default:
		return fmt.Errorf("unknown request kind: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Transaction Mode Definition
// --------------------------------------------------------------------------

// TransactionMode selects the commit semantics of a batch.
type TransactionMode uint8

const (
	// ModeAtomic executes all statements in one transaction: any failure
	// rolls the whole batch back.
	ModeAtomic TransactionMode = iota

	// ModePerStatement commits each statement independently. A failure halts
	// the remaining statements but leaves prior commits intact.
	ModePerStatement
)

// String returns the wire representation of a TransactionMode.
func (m TransactionMode) String() string {
	switch m {
	case ModePerStatement:
		return "per_statement"
	default:
		return "atomic"
	}
}

// MarshalJSON implements the json.Marshaler interface for TransactionMode.
func (m TransactionMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for TransactionMode.
func (m *TransactionMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "atomic", "":
		*m = ModeAtomic
	case "per_statement":
		*m = ModePerStatement
	default:
		return fmt.Errorf("unknown transaction mode: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Maintenance Op Definition
// --------------------------------------------------------------------------

// MaintenanceOp selects the maintenance operation of a KindMaintenance request.
type MaintenanceOp uint8

const (
	OpNone       MaintenanceOp = iota
	OpCheckpoint               // Checkpoint the WAL into the main file
	OpClose                    // Release the storage handle for file replacement
	OpReopen                   // Reopen the storage handle after maintenance
)

// String returns the wire representation of a MaintenanceOp.
func (o MaintenanceOp) String() string {
	switch o {
	case OpCheckpoint:
		return "checkpoint"
	case OpClose:
		return "close"
	case OpReopen:
		return "reopen"
	default:
		return ""
	}
}

// MarshalJSON implements the json.Marshaler interface for MaintenanceOp.
func (o MaintenanceOp) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MaintenanceOp.
func (o *MaintenanceOp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "":
		*o = OpNone
	case "checkpoint":
		*o = OpCheckpoint
	case "close":
		*o = OpClose
	case "reopen":
		*o = OpReopen
	default:
		return fmt.Errorf("unknown maintenance op: %s", s)
	}

	return nil
}

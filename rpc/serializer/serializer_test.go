package serializer

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/scribedb/scribe/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON": NewJSONSerializer,
	"GOB":  NewGOBSerializer,
}

// testRequests creates requests with different field combinations filled
func testRequests() []common.Request {
	return []common.Request{
		// Minimal ping
		{ID: "req-1", Kind: common.KindPing},

		// Batch with empty statements
		{ID: "req-2", Kind: common.KindExecBatch, Statements: []common.Statement{}, Mode: common.ModeAtomic},

		// Statement with empty params
		{
			ID:   "req-3",
			Kind: common.KindExec,
			Statements: []common.Statement{
				{SQL: "DELETE FROM t"},
			},
			Mode: common.ModePerStatement,
		},

		// Statement with every scalar param type
		{
			ID:   "req-4",
			Kind: common.KindExecBatch,
			Statements: []common.Statement{
				{
					SQL:    "INSERT INTO t (a, b, c, d, e) VALUES (?, ?, ?, ?, ?)",
					Params: []any{json.Number("42"), json.Number("3.5"), "text", nil, true},
				},
				{SQL: "UPDATE t SET a = ? WHERE b = ?", Params: []any{json.Number("1"), "x"}},
			},
			Mode: common.ModeAtomic,
		},

		// Control requests
		{ID: "req-5", Kind: common.KindShutdown},
		{ID: "req-6", Kind: common.KindDisconnect},
		{ID: "req-7", Kind: common.KindMaintenance, Op: common.OpCheckpoint},
	}
}

// testResponses creates responses with different field combinations filled
func testResponses() []common.Response {
	return []common.Response{
		// Success, no counts
		{ID: "req-1", Ok: true, Rev: 1},

		// Success with counts and rows
		{
			ID:           "req-2",
			Ok:           true,
			Rev:          2,
			RowsAffected: 3,
			Succeeded:    2,
			Columns:      []string{"id", "v"},
			Rows:         [][]any{{json.Number("1"), "a"}, {json.Number("2"), nil}},
		},

		// Engine failure at index 1
		{
			ID:  "req-3",
			Ok:  false,
			Rev: 3,
			Error: &common.ErrorInfo{
				Code:           "engine_error",
				Message:        "UNIQUE constraint failed: t.id",
				StatementIndex: 1,
			},
		},

		// Failure not bound to a statement
		{
			ID:    "req-4",
			Ok:    false,
			Error: &common.ErrorInfo{Code: "protocol_error", Message: "unknown request kind", StatementIndex: -1},
		},
	}
}

// TestRequestRoundTrip tests that requests survive serialization unchanged
func TestRequestRoundTrip(t *testing.T) {
	requests := testRequests()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()

			for i, req := range requests {
				data, err := s.SerializeRequest(&req)
				if err != nil {
					t.Errorf("Failed to serialize request %d: %v", i, err)
					continue
				}

				var result common.Request
				if err := s.DeserializeRequest(data, &result); err != nil {
					t.Errorf("Failed to deserialize request %d: %v", i, err)
					continue
				}

				if !requestsEqual(req, result) {
					t.Errorf("Request %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, req, result)
				}
			}
		})
	}
}

// TestResponseRoundTrip tests that responses survive serialization unchanged
func TestResponseRoundTrip(t *testing.T) {
	responses := testResponses()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()

			for i, resp := range responses {
				data, err := s.SerializeResponse(&resp)
				if err != nil {
					t.Errorf("Failed to serialize response %d: %v", i, err)
					continue
				}

				var result common.Response
				if err := s.DeserializeResponse(data, &result); err != nil {
					t.Errorf("Failed to deserialize response %d: %v", i, err)
					continue
				}

				if !reflect.DeepEqual(resp, result) {
					t.Errorf("Response %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, resp, result)
				}
			}
		})
	}
}

// requestsEqual compares requests, treating a nil and an empty statement
// list as distinct only for JSON (gob preserves the distinction too, but an
// empty slice legitimately arrives as empty on both paths).
func requestsEqual(a, b common.Request) bool {
	if a.ID != b.ID || a.Kind != b.Kind || a.Mode != b.Mode || a.Op != b.Op {
		return false
	}
	if len(a.Statements) != len(b.Statements) {
		return false
	}
	for i := range a.Statements {
		if a.Statements[i].SQL != b.Statements[i].SQL {
			return false
		}
		if len(a.Statements[i].Params) != len(b.Statements[i].Params) {
			return false
		}
		for j := range a.Statements[i].Params {
			if !reflect.DeepEqual(a.Statements[i].Params[j], b.Statements[i].Params[j]) {
				return false
			}
		}
	}
	return true
}

// TestRequestKindStrings tests the wire names of every request kind
func TestRequestKindStrings(t *testing.T) {
	cases := map[common.RequestKind]string{
		common.KindExec:        "exec",
		common.KindExecBatch:   "exec_batch",
		common.KindPing:        "ping",
		common.KindShutdown:    "shutdown",
		common.KindDisconnect:  "disconnect",
		common.KindMaintenance: "maintenance",
	}

	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("kind %d: expected %q, got %q", kind, want, got)
		}

		// Round trip through JSON
		data, err := json.Marshal(kind)
		if err != nil {
			t.Fatalf("marshal %q: %v", want, err)
		}
		var back common.RequestKind
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %q: %v", want, err)
		}
		if back != kind {
			t.Errorf("kind %q didn't survive JSON round trip", want)
		}
	}
}

// TestUnknownKindRejected tests that an unrecognized kind fails to decode
func TestUnknownKindRejected(t *testing.T) {
	var k common.RequestKind
	if err := json.Unmarshal([]byte(`"compact"`), &k); err == nil {
		t.Error("expected error for unknown request kind")
	}

	var m common.TransactionMode
	if err := json.Unmarshal([]byte(`"serializable"`), &m); err == nil {
		t.Error("expected error for unknown transaction mode")
	}
}

// TestTransactionModeDefault tests that a missing mode decodes as atomic
func TestTransactionModeDefault(t *testing.T) {
	var req common.Request
	payload := []byte(`{"id":"x","kind":"exec_batch","statements":[{"sql":"DELETE FROM t"}]}`)
	if err := json.Unmarshal(payload, &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Mode != common.ModeAtomic {
		t.Errorf("expected missing mode to default to atomic, got %s", req.Mode)
	}
}

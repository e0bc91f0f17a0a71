package serializer

import "github.com/scribedb/scribe/rpc/common"

// IRPCSerializer is the interface for all document serializers.
// The daemon's canonical wire format is JSON; alternative encodings only
// need to round-trip the request and response documents faithfully.
type IRPCSerializer interface {
	// SerializeRequest serializes a Request document into a byte array
	SerializeRequest(req *common.Request) ([]byte, error)
	// DeserializeRequest deserializes a byte array into a Request document
	DeserializeRequest(b []byte, req *common.Request) error
	// SerializeResponse serializes a Response document into a byte array
	SerializeResponse(resp *common.Response) ([]byte, error)
	// DeserializeResponse deserializes a byte array into a Response document
	DeserializeResponse(b []byte, resp *common.Response) error
}

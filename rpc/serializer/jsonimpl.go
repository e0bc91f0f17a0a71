package serializer

import (
	"bytes"
	"encoding/json"

	"github.com/scribedb/scribe/rpc/common"
)

// NewJSONSerializer creates a new serializer using json encoding.
// JSON is the canonical wire format: payloads are UTF-8 documents readable
// by any client implementation.
func NewJSONSerializer() IRPCSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IRPCSerializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) SerializeRequest(req *common.Request) ([]byte, error) {
	return json.Marshal(req)
}

func (j jsonSerializerImpl) DeserializeRequest(b []byte, req *common.Request) error {
	return decodeNumberPreserving(b, req)
}

func (j jsonSerializerImpl) SerializeResponse(resp *common.Response) ([]byte, error) {
	return json.Marshal(resp)
}

func (j jsonSerializerImpl) DeserializeResponse(b []byte, resp *common.Response) error {
	return decodeNumberPreserving(b, resp)
}

// decodeNumberPreserving decodes with json.Number for untyped numbers so
// integer statement parameters survive the round trip without being forced
// through float64.
func decodeNumberPreserving(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}

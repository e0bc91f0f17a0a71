package serializer

import (
	"bytes"
	"encoding/gob"
	"encoding/json"

	"github.com/scribedb/scribe/rpc/common"
)

func init() {
	// Statement parameters are interface values; gob needs the concrete
	// scalar types registered up front.
	gob.Register(json.Number(""))
	gob.Register([]any{})
	gob.Register(int64(0))
	gob.Register(float64(0))
}

// NewGOBSerializer creates a new serializer using Go's binary gob format.
// Only usable when both ends are Go; the canonical wire format stays JSON.
func NewGOBSerializer() IRPCSerializer {
	return &gobSerializerImpl{}
}

// gobSerializerImpl implements the IRPCSerializer interface using gob encoding
type gobSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl) SerializeRequest(req *common.Request) ([]byte, error) {
	return gobEncode(req)
}

func (g gobSerializerImpl) DeserializeRequest(b []byte, req *common.Request) error {
	return gobDecode(b, req)
}

func (g gobSerializerImpl) SerializeResponse(resp *common.Response) ([]byte, error) {
	return gobEncode(resp)
}

func (g gobSerializerImpl) DeserializeResponse(b []byte, resp *common.Response) error {
	return gobDecode(b, resp)
}

func gobEncode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecode(b []byte, v any) error {
	buf := bytes.NewBuffer(b)
	dec := gob.NewDecoder(buf)
	return dec.Decode(v)
}

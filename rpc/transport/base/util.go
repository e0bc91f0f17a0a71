package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/scribedb/scribe/rpc/common"
)

// Frame format, matching the original daemon protocol:
// - 4 bytes: payload length (uint32, little endian)
// - N bytes: payload (a serialized request or response document)

const headerSize = 4

// writeFrame writes one length-prefixed frame to the connection. It blocks
// until the full frame is written.
func writeFrame(conn net.Conn, payload []byte) error {
	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header, uint32(len(payload)))

	b := net.Buffers{header, payload}
	_, err := b.WriteTo(conn)
	return err
}

// readFrame reads one length-prefixed frame. It blocks until the full frame
// is read or the channel closes. A length field of zero or above maxSize is
// a protocol error: it signals a framing or version mismatch, never a
// transient fault.
func readFrame(conn net.Conn, maxSize int) ([]byte, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(conn, header); err != nil {
		return nil, err
	}

	length := binary.LittleEndian.Uint32(header)
	if length == 0 {
		return nil, common.NewError(common.ErrKindProtocol, "zero-length frame")
	}
	if int(length) > maxSize {
		return nil, common.NewError(common.ErrKindProtocol,
			fmt.Sprintf("frame length %d exceeds maximum %d", length, maxSize))
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return nil, err
	}

	return payload, nil
}

// maxFrameSize resolves the configured frame limit.
func maxFrameSize(configured int) int {
	if configured > 0 {
		return configured
	}
	return common.DefaultMaxFrameSize
}

package rpcframe

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"
)

// FrameStream adapts a Content-Length-framed byte stream into a
// github.com/sourcegraph/jsonrpc2.ObjectStream, so the RPC multiplexer (C2)
// can be built directly on top of jsonrpc2.Conn instead of reimplementing
// request/response correlation.
type FrameStream struct {
	r *bufio.Reader
	w io.Writer

	writeMu sync.Mutex
	closer  io.Closer
}

// NewFrameStream wraps rw (a subprocess's stdout for reads, stdin for
// writes) in a framed object stream. closer is called once on Close, and is
// typically the subprocess's combined stdio closer.
func NewFrameStream(r io.Reader, w io.Writer, closer io.Closer) *FrameStream {
	return &FrameStream{
		r:      bufio.NewReader(r),
		w:      w,
		closer: closer,
	}
}

// WriteObject implements jsonrpc2.ObjectStream.
func (s *FrameStream) WriteObject(obj interface{}) error {
	body, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return WriteFrame(s.w, body)
}

// ReadObject implements jsonrpc2.ObjectStream.
func (s *FrameStream) ReadObject(v interface{}) error {
	body, err := ReadFrame(s.r)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

// Close implements jsonrpc2.ObjectStream.
func (s *FrameStream) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

package transport

import (
	"bufio"
	"io"
	"sync"
)

const (
	// MaxMessageSize is the largest data channel message written. It stays
	// well under the SCTP message limit every WebRTC stack accepts.
	MaxMessageSize = 16 * 1024
	// streamReadBuffer must hold the largest message a peer may send.
	streamReadBuffer = 64 * 1024
)

// MessageStream turns a message-oriented ReadWriteCloser, such as a
// detached pion data channel, into an ordered byte stream. Writes are
// split into messages of at most MaxMessageSize bytes; reads go through a
// buffer large enough for any incoming message, so callers may read with
// buffers of any size.
type MessageStream struct {
	rwc   io.ReadWriteCloser
	label string

	reader *bufio.Reader
	wmu    sync.Mutex
}

// NewMessageStream wraps rwc. The label is used only by String.
func NewMessageStream(rwc io.ReadWriteCloser, label string) *MessageStream {
	return &MessageStream{
		rwc:    rwc,
		label:  label,
		reader: bufio.NewReaderSize(rwc, streamReadBuffer),
	}
}

func (s *MessageStream) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

func (s *MessageStream) Write(p []byte) (int, error) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	written := 0
	for written < len(p) {
		chunk := p[written:min(written+MaxMessageSize, len(p))]
		n, err := s.rwc.Write(chunk)
		written += n
		if err != nil {
			return written, err
		}
		if n < len(chunk) {
			return written, io.ErrShortWrite
		}
	}
	return written, nil
}

func (s *MessageStream) Close() error {
	return s.rwc.Close()
}

func (s *MessageStream) String() string {
	return s.label
}

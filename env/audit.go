package env

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/MichaelS239/cryptography-sandbox/protocol"
)

// Record is one audit log entry: who sent what kind of payload to whom, and
// the payload in transport form. Records are built exclusively from Message
// transport payloads, so neither plaintext nor private key material can ever
// reach a sink.
type Record struct {
	Timestamp time.Time
	Sender    string
	Receiver  string
	Kind      protocol.PayloadKind
	Payload   string // hex of the transport payload
}

func newRecord(msg *protocol.Message) Record {
	return Record{
		Timestamp: msg.Timestamp(),
		Sender:    msg.Sender(),
		Receiver:  msg.Receiver(),
		Kind:      msg.Kind(),
		Payload:   msg.PayloadHex(),
	}
}

// line renders the record in the fixed tab-separated log format.
func (r Record) line() string {
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s\n",
		r.Timestamp.Format(time.RFC3339Nano), r.Sender, r.Receiver, r.Kind, r.Payload)
}

// AuditSink is an append-only destination for audit records. Sinks never
// rewrite or truncate what they have accepted.
type AuditSink interface {
	Append(rec Record) error
	Close() error
}

// FileSink appends one line per record to a local file.
type FileSink struct {
	mu sync.Mutex
	f  *os.File
	w  *bufio.Writer
}

// NewFileSink opens (or creates) the file at path in append-only mode.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &FileSink{f: f, w: bufio.NewWriter(f)}, nil
}

// Append implements AuditSink. Each record is flushed through to the file so
// the log survives an unclean shutdown.
func (s *FileSink) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.WriteString(rec.line()); err != nil {
		return err
	}
	return s.w.Flush()
}

// Close implements AuditSink.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// MemorySink keeps records in memory, for tests and ephemeral environments.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Append implements AuditSink.
func (s *MemorySink) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// Close implements AuditSink; the records stay readable afterwards.
func (s *MemorySink) Close() error { return nil }

// Records returns a copy of everything appended so far.
func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

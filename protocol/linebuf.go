// Package protocol implements the command-ingest wire protocol of spec.md
// §4.6: line framing over a 2400-baud serial link, command-slot decoding
// with indexed addressing, and status publication with retry.
package protocol

// LineBufSize is the inbound line assembly buffer capacity (spec.md §4.6:
// "buffered up to 64 bytes").
const LineBufSize = 64

// LineBuffer assembles printable-ASCII lines from a byte stream the way
// spec.md §4.6 describes: non-printable bytes (other than the line
// terminator) are silently dropped, and an overflowing line wraps the
// write cursor back to zero, discarding whatever had been assembled so
// far. It is the single-threaded, synchronous cousin of x/shmring's SPSC
// ring — there is exactly one reader/writer here (the foreground protocol
// pass), so the concurrency machinery of shmring (atomic indices,
// edge-coalesced readiness channels) would be unused overhead; what is
// kept is the same "power-of-two cursor, wrap on overflow" discipline.
type LineBuffer struct {
	buf [LineBufSize]byte
	n   int
}

// Feed appends one byte of input. When b is a terminator (the caller
// decides which bytes count through isTerminator), Feed returns the
// assembled line (excluding the terminator) and resets the buffer. A
// non-printable, non-terminator byte is dropped. An append that would
// overflow LineBufSize instead discards the in-progress line and starts
// fresh with b.
func (l *LineBuffer) Feed(b byte, isTerminator func(byte) bool) (line []byte, complete bool) {
	if isTerminator(b) {
		line = append([]byte(nil), l.buf[:l.n]...)
		l.n = 0
		return line, true
	}
	if !printable(b) {
		return nil, false
	}
	if l.n >= LineBufSize {
		l.n = 0 // overflow: discard the line in progress
	}
	l.buf[l.n] = b
	l.n++
	return nil, false
}

func printable(b byte) bool { return b >= 0x20 && b < 0x7F }

// DotOrNewlineTerminator accepts either '.' or '\n' as the line terminator
// for inbound command frames.
//
// Open question resolved: spec.md §9 notes the upstream firmware is
// internally inconsistent about whether the 16-hex-char command frame is
// terminated by a literal '.' or left unterminated before the '\n' the
// line-level framer expects; rather than guess which capture is
// authoritative, this implementation accepts both, so a frame ending in
// either byte is recognized as complete.
func DotOrNewlineTerminator(b byte) bool { return b == '.' || b == '\n' }

// NewlineTerminator is used for the status/reboot replies (spec.md §4.6,
// §6), which are always newline-terminated on the wire.
func NewlineTerminator(b byte) bool { return b == '\n' }

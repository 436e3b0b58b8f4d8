package protocol

import (
	"bytes"
	"errors"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/rspg/heatjar/errcode"
	"github.com/rspg/heatjar/types"
	"github.com/rspg/heatjar/x/conv"
)

// StatusServiceID identifies the status-publication service in an SHW
// frame (spec.md §4.6, §6: "SHW,001D,<16 hex chars>").
const StatusServiceID = "001D"

// ReplyTimeout is the ceiling on one publish round-trip (spec.md §4.6:
// "timeout after 1000 ms").
const ReplyTimeout = 1000 * time.Millisecond

// PublishRetries is the number of publish attempts (the first try plus
// retries) before giving up and invoking rebootBT (spec.md §4.6).
const PublishRetries = 3

// Transport is the minimal line-oriented duplex the protocol engine needs
// from the wireless serial module; the concrete serial implementation is
// wired in the hal package (spec.md §1's out-of-scope "wireless module").
type Transport interface {
	WriteLine(line []byte) error
	// ReadLine blocks until a line arrives or the deadline passes, and
	// returns the assembled line (without its terminator).
	ReadLine(deadline time.Time) ([]byte, error)
}

var errNotAOK = errors.New("protocol: peer did not reply AOK")

// PublishStatus encodes s and sends one SHW status frame, retrying per
// spec.md §4.6. On total failure it invokes RebootBT; if that also fails,
// it returns the latched BTDeviceError code for the caller to apply to
// the status latch (spec.md §7: "no retries except the explicit 3x
// protocol retry and 3x reboot retry").
func PublishStatus(tr Transport, s types.Status) errcode.Code {
	line := EncodeStatusFrame(s)

	op := func() error {
		if err := tr.WriteLine(line); err != nil {
			return err
		}
		reply, err := tr.ReadLine(time.Now().Add(ReplyTimeout))
		if err != nil {
			return err
		}
		if !bytes.Equal(reply, []byte("AOK")) {
			return errNotAOK
		}
		return nil
	}

	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(0), PublishRetries-1)
	if err := backoff.Retry(op, b); err != nil {
		return RebootBT(tr)
	}
	return errcode.Standby
}

// EncodeStatusFrame renders the SHW frame for a status record (spec.md
// §4.6/§6): "SHW,001D,<16 hex chars>", without the trailing '\n', which
// Transport.WriteLine appends.
func EncodeStatusFrame(s types.Status) []byte {
	raw := s.Bytes()
	var hex [types.StatusSize * 2]byte
	conv.BytesToHex(hex[:], raw[:])
	line := make([]byte, 0, len("SHW,"+StatusServiceID+",")+len(hex))
	line = append(line, "SHW,"+StatusServiceID+","...)
	line = append(line, hex[:]...)
	return line
}

// RebootBootRetries is the number of reboot attempts (spec.md §4.6:
// "Up to 3 attempts with 1 s spacing").
const RebootBootRetries = 3

// RebootSpacing is the delay between reboot attempts.
const RebootSpacing = 1 * time.Second

// RebootBT implements spec.md §4.6's bring-up retry: send "R,1", expect
// "CMD" within 1000 ms, up to 3 attempts 1s apart. On final failure it
// returns BTDeviceError for the caller to latch.
func RebootBT(tr Transport) errcode.Code {
	op := func() error {
		if err := tr.WriteLine([]byte("R,1")); err != nil {
			return err
		}
		reply, err := tr.ReadLine(time.Now().Add(ReplyTimeout))
		if err != nil {
			return err
		}
		if !bytes.Equal(reply, []byte("CMD")) {
			return errors.New("protocol: peer did not reply CMD")
		}
		return nil
	}

	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(RebootSpacing), RebootBootRetries-1)
	if err := backoff.Retry(op, b); err != nil {
		return errcode.BTDeviceError
	}
	return errcode.Standby
}

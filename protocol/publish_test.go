package protocol

import (
	"errors"
	"testing"
	"time"

	"github.com/rspg/heatjar/errcode"
	"github.com/rspg/heatjar/types"
)

// scriptedTransport replies from a canned list, one per WriteLine call, so
// tests can simulate link loss and recovery (spec.md §8 scenario 6)
// without a real wireless module.
type scriptedTransport struct {
	writes  int
	replies []string // "" means ReadLine returns an error (timeout)
}

func (s *scriptedTransport) WriteLine(line []byte) error {
	s.writes++
	return nil
}

func (s *scriptedTransport) ReadLine(deadline time.Time) ([]byte, error) {
	if s.writes-1 >= len(s.replies) {
		return nil, errors.New("no more scripted replies")
	}
	r := s.replies[s.writes-1]
	if r == "" {
		return nil, errors.New("timeout")
	}
	return []byte(r), nil
}

func TestPublishStatus_SucceedsOnFirstTry(t *testing.T) {
	tr := &scriptedTransport{replies: []string{"AOK"}}
	code := PublishStatus(tr, types.Status{})
	if code != errcode.Standby {
		t.Errorf("code = %v, want Standby", code)
	}
	if tr.writes != 1 {
		t.Errorf("writes = %d, want 1", tr.writes)
	}
}

func TestPublishStatus_RetriesThenReboots(t *testing.T) {
	// spec.md §8 scenario 6: link drop -> publisher retries 3x then
	// rebootBT; rebootBT succeeds on its 2nd attempt -> status stays 0.
	tr := &scriptedTransport{replies: []string{"", "", "", "", "CMD"}}
	code := PublishStatus(tr, types.Status{})
	if code != errcode.Standby {
		t.Errorf("code = %v, want Standby (reboot recovered)", code)
	}
	if tr.writes != 5 { // 3 publish attempts + 2 reboot attempts
		t.Errorf("writes = %d, want 5", tr.writes)
	}
}

func TestPublishStatus_TotalFailureLatchesBTDeviceError(t *testing.T) {
	tr := &scriptedTransport{replies: []string{"", "", "", "", "", ""}}
	code := PublishStatus(tr, types.Status{})
	if code != errcode.BTDeviceError {
		t.Errorf("code = %v, want BTDeviceError", code)
	}
}

func TestRebootBT_Succeeds(t *testing.T) {
	tr := &scriptedTransport{replies: []string{"CMD"}}
	code := RebootBT(tr)
	if code != errcode.Standby {
		t.Errorf("code = %v, want Standby", code)
	}
}

func TestRebootBT_AllAttemptsFail(t *testing.T) {
	tr := &scriptedTransport{replies: []string{"", "", ""}}
	code := RebootBT(tr)
	if code != errcode.BTDeviceError {
		t.Errorf("code = %v, want BTDeviceError", code)
	}
}

func TestEncodeStatusFrame_Prefix(t *testing.T) {
	line := EncodeStatusFrame(types.Status{})
	want := "SHW,001D,0000000000000000"
	if string(line) != want {
		t.Errorf("EncodeStatusFrame = %q, want %q", line, want)
	}
}

// Package display renders published status onto the out-of-scope OLED
// collaborator (spec.md §1) by subscribing to the bus rather than being
// called directly from the foreground loop, the same decoupling the
// teacher's own bus-driven services (services/heartbeat) use: a service
// owns a Connection and reacts to whatever arrives on its subscriptions.
package display

import (
	"github.com/rspg/heatjar/bus"
	"github.com/rspg/heatjar/errcode"
	"github.com/rspg/heatjar/hal"
	"github.com/rspg/heatjar/types"
)

// Topics the foreground loop publishes status and fault events on.
var (
	TopicStatus = bus.T("heatjar", "status", "value")
	TopicFault  = bus.T("heatjar", "fault", "event")
)

// Service renders every published status update, and any standalone fault
// event, onto a hal.Display. The display's concrete panel/driver is out of
// scope (spec.md §1); Service only depends on the interface.
type Service struct {
	Disp hal.Display
}

// Run subscribes to the status and fault topics and renders each update
// until stop is closed. A nil Disp makes Run a no-op, so main can start
// the service unconditionally whether or not a display is attached.
func (s *Service) Run(stop <-chan struct{}, conn *bus.Connection) {
	if s.Disp == nil {
		return
	}

	statusSub := conn.Subscribe(TopicStatus)
	defer conn.Unsubscribe(statusSub)
	faultSub := conn.Subscribe(TopicFault)
	defer conn.Unsubscribe(faultSub)

	var lastTemperature float64
	for {
		select {
		case <-stop:
			return
		case msg := <-statusSub.Channel():
			status, ok := msg.Payload.(types.Status)
			if !ok {
				continue
			}
			lastTemperature = status.Temperature.Float()
			s.Disp.ShowStatus(int8(status.Code), lastTemperature)
		case msg := <-faultSub.Channel():
			code, ok := msg.Payload.(errcode.Code)
			if !ok {
				continue
			}
			s.Disp.ShowStatus(int8(code), lastTemperature)
		}
	}
}

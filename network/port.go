package network

import (
	"fmt"

	"github.com/lex00/wetwire-dmz-go/intrinsics"
)

// Port is a protocol and port range a rule applies to.
type Port struct {
	Protocol string
	From     int
	To       int
}

// TCP returns a single TCP port.
func TCP(port int) Port {
	return Port{Protocol: "tcp", From: port, To: port}
}

// AllTCP returns the full TCP port range.
func AllTCP() Port {
	return Port{Protocol: "tcp", From: 0, To: 65535}
}

// String renders the port the way rule descriptions and graphs show it.
func (p Port) String() string {
	switch {
	case p.From == 0 && p.To == 65535:
		return fmt.Sprintf("%s ALL PORTS", p.Protocol)
	case p.From == p.To:
		return fmt.Sprintf("%s %d", p.Protocol, p.From)
	default:
		return fmt.Sprintf("%s %d-%d", p.Protocol, p.From, p.To)
	}
}

// idPart is the port's contribution to a rule's logical ID.
func (p Port) idPart() string {
	if p.From == 0 && p.To == 65535 {
		return "AllPorts"
	}
	if p.From == p.To {
		return fmt.Sprintf("Port%d", p.From)
	}
	return fmt.Sprintf("Ports%dto%d", p.From, p.To)
}

func (p Port) fromPtr() *int { return intrinsics.IntPtr(p.From) }
func (p Port) toPtr() *int   { return intrinsics.IntPtr(p.To) }

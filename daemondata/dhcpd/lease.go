package dhcpddata

import "github.com/pkg/errors"

// The IP address of the lease before the lease declaration supplies it.
const placeholderIPAddress = "localhost"

// Lifecycle state of the lease as classified by the DHCP server.
type BindingState int

// Binding states. The free state is the default one.
const (
	BindingStateActive BindingState = iota
	BindingStateFree
	BindingStateAbandoned
)

// Returns the binding state name as written in the lease file.
func (s BindingState) String() string {
	switch s {
	case BindingStateActive:
		return "active"
	case BindingStateFree:
		return "free"
	case BindingStateAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Converts the binding state name into the binding state. The match is
// exact and case-sensitive.
func ParseBindingState(name string) (BindingState, error) {
	switch name {
	case "active":
		return BindingStateActive, nil
	case "free":
		return BindingStateFree, nil
	case "abandoned":
		return BindingStateAbandoned, nil
	default:
		return 0, errors.Errorf("unknown binding state '%s'", name)
	}
}

// Timestamps recorded for the lease. Each of them is nil until the
// corresponding statement is parsed.
type LeaseDates struct {
	// Start of the lease.
	Starts *Date
	// End of the lease.
	Ends *Date
	// Time the peer has been told the lease expires (failover).
	Tstp *Date
	// Time the peer has acknowledged the lease expiry (failover).
	Tsfp *Date
	// Actual time sent from the failover partner.
	Atsfp *Date
	// Client's last transaction time.
	Cltt *Date
}

// Link-layer address of the client. Neither value is validated.
type Hardware struct {
	Type string
	MAC  string
}

// A lease parsed from a single lease declaration.
type Lease struct {
	IP                    string
	Dates                 LeaseDates
	Hardware              *Hardware
	UID                   *string
	ClientHostname        *string
	Hostname              *string
	BindingState          BindingState
	NextBindingState      *BindingState
	RewindBindingState    *BindingState
	VendorClassIdentifier *string
}

// Creates a lease with the default values. The IP address is set to a
// placeholder and the binding state is free.
func NewLease() Lease {
	return Lease{
		IP:           placeholderIPAddress,
		BindingState: BindingStateFree,
	}
}

// Checks if the lease is valid at the specified time. The time must not
// be earlier than the lease start and not later than the lease end.
// Missing start or end imposes no constraint.
func (l *Lease) IsActiveAt(when Date) bool {
	if l.Dates.Starts != nil && l.Dates.Starts.After(when) {
		return false
	}
	if l.Dates.Ends != nil && l.Dates.Ends.Before(when) {
		return false
	}
	return true
}

// Returns the MAC address or an empty string if the hardware statement
// was not present.
func (l *Lease) MAC() string {
	if l.Hardware == nil {
		return ""
	}
	return l.Hardware.MAC
}

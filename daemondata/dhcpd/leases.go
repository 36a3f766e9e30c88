package dhcpddata

import (
	"net"
	"slices"

	"github.com/pkg/errors"
)

// Lease field used to look up the leases.
type LeasesField int

// Lease fields supported in lookups.
const (
	FieldClientHostname LeasesField = iota
	FieldHostname
	FieldLeasedIP
	FieldMAC
)

// Returns the field name.
func (f LeasesField) String() string {
	switch f {
	case FieldClientHostname:
		return "client-hostname"
	case FieldHostname:
		return "hostname"
	case FieldLeasedIP:
		return "ip"
	case FieldMAC:
		return "mac"
	default:
		return "unknown"
	}
}

// Converts the field name into the lease field.
func ParseLeasesField(name string) (LeasesField, error) {
	for _, field := range []LeasesField{FieldClientHostname, FieldHostname, FieldLeasedIP, FieldMAC} {
		if field.String() == name {
			return field, nil
		}
	}
	return 0, errors.Errorf("unsupported lease field '%s'", name)
}

// Returns the value of the field in the lease. The second returned value
// is false if the lease lacks the field.
func (f LeasesField) valueOf(lease *Lease) (string, bool) {
	switch f {
	case FieldClientHostname:
		if lease.ClientHostname == nil {
			return "", false
		}
		return *lease.ClientHostname, true
	case FieldHostname:
		if lease.Hostname == nil {
			return "", false
		}
		return *lease.Hostname, true
	case FieldLeasedIP:
		return lease.IP, true
	case FieldMAC:
		if lease.Hardware == nil {
			return "", false
		}
		return lease.Hardware.MAC, true
	default:
		return "", false
	}
}

// Ordered collection of leases in the order of their declarations in the
// lease file. The same IP address may appear many times; the later
// declarations describe the later lease grants for that address.
type Leases []Lease

// Returns a copy of all leases.
func (leases Leases) All() []Lease {
	return slices.Clone(leases)
}

// Returns the most recently declared lease having the specified field
// value, that is active at the specified time and is not abandoned.
// The later leases for the same value shadow the earlier ones.
func (leases Leases) ActiveBy(field LeasesField, value string, at Date) (Lease, bool) {
	for i := len(leases) - 1; i >= 0; i-- {
		lease := &leases[i]
		if !lease.IsActiveAt(at) || lease.BindingState == BindingStateAbandoned {
			continue
		}
		if v, ok := field.valueOf(lease); ok && v == value {
			return *lease, true
		}
	}
	return Lease{}, false
}

// Returns the active lease for the hostname.
func (leases Leases) ActiveByHostname(hostname string, at Date) (Lease, bool) {
	return leases.ActiveBy(FieldHostname, hostname, at)
}

// Returns the active lease for the client hostname.
func (leases Leases) ActiveByClientHostname(hostname string, at Date) (Lease, bool) {
	return leases.ActiveBy(FieldClientHostname, hostname, at)
}

// Returns the last lease having the field value, regardless of its state
// and dates.
func (leases Leases) lastBy(field LeasesField, value string) (Lease, bool) {
	for i := len(leases) - 1; i >= 0; i-- {
		if v, ok := field.valueOf(&leases[i]); ok && v == value {
			return leases[i], true
		}
	}
	return Lease{}, false
}

// Returns all leases having the field value in the declaration order.
func (leases Leases) allBy(field LeasesField, value string) Leases {
	var result Leases
	for i := range leases {
		if v, ok := field.valueOf(&leases[i]); ok && v == value {
			result = append(result, leases[i])
		}
	}
	return result
}

// Returns the last declared lease for the IP address.
func (leases Leases) ByLeased(ip string) (Lease, bool) {
	return leases.lastBy(FieldLeasedIP, ip)
}

// Returns all leases for the IP address.
func (leases Leases) ByLeasedAll(ip string) Leases {
	return leases.allBy(FieldLeasedIP, ip)
}

// Returns the last declared lease for the MAC address.
func (leases Leases) ByMAC(mac string) (Lease, bool) {
	return leases.lastBy(FieldMAC, mac)
}

// Returns all leases for the MAC address.
func (leases Leases) ByMACAll(mac string) Leases {
	return leases.allBy(FieldMAC, mac)
}

// Returns all leases for the hostname.
func (leases Leases) ByHostnameAll(hostname string) Leases {
	return leases.allBy(FieldHostname, hostname)
}

// Returns all leases for the client hostname.
func (leases Leases) ByClientHostnameAll(hostname string) Leases {
	return leases.allBy(FieldClientHostname, hostname)
}

// Returns sorted unique values of the field.
func (leases Leases) distinct(field LeasesField) []string {
	var values []string
	for i := range leases {
		if v, ok := field.valueOf(&leases[i]); ok {
			values = append(values, v)
		}
	}
	slices.Sort(values)
	return slices.Compact(values)
}

// Returns sorted unique hostnames.
func (leases Leases) Hostnames() []string {
	return leases.distinct(FieldHostname)
}

// Returns sorted unique client hostnames.
func (leases Leases) ClientHostnames() []string {
	return leases.distinct(FieldClientHostname)
}

// Returns the leases active at the specified time, one per IP address.
// For each address it is the lease ActiveBy would return for the
// address. The result is in the declaration order.
func (leases Leases) ActiveAt(at Date) Leases {
	resolved := make(map[string]bool)
	var result Leases
	for i := len(leases) - 1; i >= 0; i-- {
		lease := &leases[i]
		if resolved[lease.IP] {
			continue
		}
		if !lease.IsActiveAt(at) || lease.BindingState == BindingStateAbandoned {
			continue
		}
		resolved[lease.IP] = true
		result = append(result, *lease)
	}
	slices.Reverse(result)
	return result
}

// Returns the leases with IP addresses belonging to the subnet. The
// leases with addresses that cannot be parsed are skipped.
func (leases Leases) InSubnet(subnet *net.IPNet) Leases {
	var result Leases
	for _, lease := range leases {
		ip := net.ParseIP(lease.IP)
		if ip != nil && subnet.Contains(ip) {
			result = append(result, lease)
		}
	}
	return result
}

// Counts the leases by their binding state.
func (leases Leases) CountByBindingState() map[BindingState]int {
	counts := map[BindingState]int{
		BindingStateActive:    0,
		BindingStateFree:      0,
		BindingStateAbandoned: 0,
	}
	for _, lease := range leases {
		counts[lease.BindingState]++
	}
	return counts
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pkg/errors"

	dhcpddata "isc.org/dhcpdleases/daemondata/dhcpd"
)

// Supported output formats.
const (
	formatText = "text"
	formatJSON = "json"
)

// Lease representation in the command output.
type leaseView struct {
	IP                    string  `json:"ip"`
	Starts                *string `json:"starts,omitempty"`
	Ends                  *string `json:"ends,omitempty"`
	Tstp                  *string `json:"tstp,omitempty"`
	Tsfp                  *string `json:"tsfp,omitempty"`
	Atsfp                 *string `json:"atsfp,omitempty"`
	Cltt                  *string `json:"cltt,omitempty"`
	HardwareType          *string `json:"hardwareType,omitempty"`
	MAC                   *string `json:"mac,omitempty"`
	UID                   *string `json:"uid,omitempty"`
	ClientHostname        *string `json:"clientHostname,omitempty"`
	Hostname              *string `json:"hostname,omitempty"`
	BindingState          string  `json:"bindingState"`
	NextBindingState      *string `json:"nextBindingState,omitempty"`
	RewindBindingState    *string `json:"rewindBindingState,omitempty"`
	VendorClassIdentifier *string `json:"vendorClassIdentifier,omitempty"`
}

// Subnet utilization in the command output.
type utilizationView struct {
	Subnet       string  `json:"subnet"`
	FirstAddress string  `json:"firstAddress"`
	LastAddress  string  `json:"lastAddress"`
	Total        string  `json:"total"`
	Active       int     `json:"active"`
	Utilization  float64 `json:"utilization"`
}

// Returns the string representation of an optional value.
func optionalString[T fmt.Stringer](value *T) *string {
	if value == nil {
		return nil
	}
	s := (*value).String()
	return &s
}

// Converts the lease into its output representation.
func newLeaseView(lease dhcpddata.Lease) leaseView {
	view := leaseView{
		IP:                    lease.IP,
		Starts:                optionalString(lease.Dates.Starts),
		Ends:                  optionalString(lease.Dates.Ends),
		Tstp:                  optionalString(lease.Dates.Tstp),
		Tsfp:                  optionalString(lease.Dates.Tsfp),
		Atsfp:                 optionalString(lease.Dates.Atsfp),
		Cltt:                  optionalString(lease.Dates.Cltt),
		UID:                   lease.UID,
		ClientHostname:        lease.ClientHostname,
		Hostname:              lease.Hostname,
		BindingState:          lease.BindingState.String(),
		NextBindingState:      optionalString(lease.NextBindingState),
		RewindBindingState:    optionalString(lease.RewindBindingState),
		VendorClassIdentifier: lease.VendorClassIdentifier,
	}
	if lease.Hardware != nil {
		view.HardwareType = &lease.Hardware.Type
		view.MAC = &lease.Hardware.MAC
	}
	return view
}

// Writes the value as indented JSON.
func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(value), "failed to write JSON output")
}

// Returns the optional value or a dash.
func orDash(value *string) string {
	if value == nil || *value == "" {
		return "-"
	}
	return *value
}

// Writes the leases in the specified format.
func writeLeases(w io.Writer, format string, leases dhcpddata.Leases) error {
	views := make([]leaseView, 0, len(leases))
	for _, lease := range leases {
		views = append(views, newLeaseView(lease))
	}
	if format == formatJSON {
		return writeJSON(w, views)
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "IP\tSTATE\tSTARTS\tENDS\tMAC\tHOSTNAME\tCLIENT HOSTNAME")
	for _, view := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			view.IP, view.BindingState, orDash(view.Starts), orDash(view.Ends),
			orDash(view.MAC), orDash(view.Hostname), orDash(view.ClientHostname))
	}
	return errors.Wrap(tw.Flush(), "failed to write output")
}

// Writes the names in the specified format.
func writeNames(w io.Writer, format string, names []string) error {
	if names == nil {
		names = []string{}
	}
	if format == formatJSON {
		return writeJSON(w, names)
	}
	for _, name := range names {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return errors.Wrap(err, "failed to write output")
		}
	}
	return nil
}

// Writes the subnet utilization in the specified format.
func writeUtilization(w io.Writer, format string, view utilizationView) error {
	if format == formatJSON {
		return writeJSON(w, view)
	}
	_, err := fmt.Fprintf(w, "Subnet:      %s\nRange:       %s - %s\nTotal:       %s\nActive:      %d\nUtilization: %.2f%%\n",
		view.Subnet, view.FirstAddress, view.LastAddress, view.Total, view.Active, view.Utilization)
	return errors.Wrap(err, "failed to write output")
}

package dhcpdutil

import (
	"math/big"
	"net"
	"strings"

	cidr "github.com/apparentlymart/go-cidr/cidr"
	"github.com/pkg/errors"
)

// Parses the subnet prefix. The address without the prefix length is
// turned into a single address subnet.
func ParseSubnet(prefix string) (*net.IPNet, error) {
	prefix = strings.TrimSpace(prefix)
	if !strings.Contains(prefix, "/") {
		ip := net.ParseIP(prefix)
		if ip == nil {
			return nil, errors.Errorf("provided string %s is not a valid IP address", prefix)
		}
		if ip.To4() != nil {
			prefix += "/32"
		} else {
			prefix += "/128"
		}
	}
	_, subnet, err := net.ParseCIDR(prefix)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid subnet prefix %s", prefix)
	}
	return subnet, nil
}

// Returns the first and the last address of the subnet.
func SubnetRange(subnet *net.IPNet) (net.IP, net.IP) {
	return cidr.AddressRange(subnet)
}

// Returns the number of addresses in the subnet.
func SubnetSize(subnet *net.IPNet) *big.Int {
	ones, bits := subnet.Mask.Size()
	if bits-ones < 64 {
		return new(big.Int).SetUint64(cidr.AddressCount(subnet))
	}
	return new(big.Int).Lsh(big.NewInt(1), uint(bits-ones))
}

// Returns the percentage of the subnet addresses that are in use.
func SubnetUtilization(used int, subnet *net.IPNet) float64 {
	size := new(big.Float).SetInt(SubnetSize(subnet))
	utilization, _ := new(big.Float).Quo(big.NewFloat(float64(used)*100), size).Float64()
	return utilization
}

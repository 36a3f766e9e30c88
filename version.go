package dhcpdleases

// Version of the dhcpd lease tools.
const Version = "1.0.0"

// Build date, set by the build system.
var BuildDate = "unset"

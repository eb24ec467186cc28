package utils

import (
	"net/netip"
	"strings"
)

// RFC 6066 §3 (https://www.rfc-editor.org/rfc/rfc6066)
// - DNS names only
// - No literal IPs
// - No trailing dot: an FQDN's final dot is the zero-length root label (RFC 8499 §2), which HostName doesn't carry
//
// Returns nil if there's no usable ServerName, which means "don't send SNI".
// Note that an empty string survives; it's not an address.
func CanonicalServerName(sn *string) *string {
	if sn == nil {
		return nil
	}

	name := strings.Clone(*sn)
	name = strings.TrimSuffix(name, ".") // exactly one

	if IsAddressLiteral(name) {
		return nil
	}

	return &name
}

// IsAddressLiteral reports whether s is a syntactically valid IPv4 or IPv6 address.
// Stricter than net.ParseIP: no zones, no leading zeros in v4 octets.
func IsAddressLiteral(s string) bool {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return false
	}
	return addr.Zone() == ""
}

// ServerNameConformant reports whether sn may be sent as-is; ie it's already canonical and has no port.
func ServerNameConformant(sn string) bool {
	if c := CanonicalServerName(&sn); c == nil || *c != sn {
		return false
	}
	// No ports
	if strings.ContainsRune(sn, ':') {
		return false
	}
	return true
}

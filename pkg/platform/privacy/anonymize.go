// Package privacy keeps personally identifying values out of access logs and
// audit events.
package privacy

import (
	"fmt"
	"net/netip"
	"strings"
)

// AnonymizeIP truncates an address to its network: IPv4 keeps the /24
// ("192.168.1.47" -> "192.168.1.0"), IPv6 keeps the /48 prefix.
// Returns "unknown" for empty input and "invalid" for unparseable input.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()

	if addr.Is4() {
		b := addr.As4()
		return fmt.Sprintf("%d.%d.%d.0", b[0], b[1], b[2])
	}

	b := addr.As16()
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::", b[0], b[1], b[2], b[3], b[4], b[5])
}

// MaskUsername keeps the first character of a login name and masks the rest
// ("alice" -> "a****").
func MaskUsername(username string) string {
	runes := []rune(username)
	switch len(runes) {
	case 0:
		return "unknown"
	case 1:
		return "*"
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-1)
}

// ShortFingerprint returns a log-safe prefix of a device fingerprint.
func ShortFingerprint(fp string) string {
	if len(fp) <= 8 {
		return fp
	}
	return fp[:8]
}

package models

import (
	"fmt"
	"net/netip"
	"strings"

	id "aegis/pkg/domain"
)

// KeyPrefix represents the scope of a shared-store key.
type KeyPrefix string

const (
	KeyPrefixIP       KeyPrefix = "ip"
	KeyPrefixUser     KeyPrefix = "user"
	KeyPrefixFailed   KeyPrefix = "failed"
	KeyPrefixNotified KeyPrefix = "notified"
	KeyPrefixTrusted  KeyPrefix = "trusted"
	KeyPrefixKnownIPs KeyPrefix = "known_ips"
)

// StoreKey is a value object encapsulating shared-store key construction.
// It centralizes key format and sanitization to prevent key collision attacks.
type StoreKey struct {
	prefix   KeyPrefix
	segments []string
}

// IPKey scopes the per-IP brute-force window: "ip:<addr>".
func IPKey(ip string) StoreKey {
	return newKey(KeyPrefixIP, CanonicalIP(ip))
}

// CanonicalIP returns the normalized text form of ip so that spellings of
// the same address (IPv4-mapped IPv6, upper-case hex, expanded zeros) share
// one identity. Unparseable input is returned unchanged.
func CanonicalIP(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ip
	}
	return addr.Unmap().String()
}

// UsernameKey scopes the per-username brute-force window: "user:<name>".
func UsernameKey(username string) StoreKey {
	return newKey(KeyPrefixUser, strings.ToLower(username))
}

// FailedAttemptsKey scopes the failed-credential window of a username.
func FailedAttemptsKey(username string) StoreKey {
	return newKey(KeyPrefixFailed, strings.ToLower(username))
}

// NotifiedKey marks that a failed-attempt threshold notification was sent.
func NotifiedKey(username string, threshold int) StoreKey {
	return newKey(KeyPrefixNotified, strings.ToLower(username), fmt.Sprintf("%d", threshold))
}

// TrustedDevicesKey holds a user's trust set.
func TrustedDevicesKey(userID id.UserID) StoreKey {
	return newKey(KeyPrefixTrusted, userID.String())
}

// KnownIPsKey holds the addresses a user logged in from successfully.
func KnownIPsKey(userID id.UserID) StoreKey {
	return newKey(KeyPrefixKnownIPs, userID.String())
}

func newKey(prefix KeyPrefix, segments ...string) StoreKey {
	sanitized := make([]string, len(segments))
	for i, seg := range segments {
		sanitized[i] = sanitizeKeySegment(seg)
	}
	return StoreKey{prefix: prefix, segments: sanitized}
}

// String returns the formatted key for storage lookup.
func (k StoreKey) String() string {
	return string(k.prefix) + ":" + strings.Join(k.segments, ":")
}

// sanitizeKeySegment escapes delimiter characters so user-controlled values
// containing ':' cannot address an adjacent key.
//
// Escape rules (order matters):
//  1. '_' -> '__'
//  2. ':' -> '_c'
//
// Examples:
//   - "::1"        -> "_c_c1"
//   - "user_:x"    -> "user___cx"
func sanitizeKeySegment(s string) string {
	s = strings.ReplaceAll(s, "_", "__")
	s = strings.ReplaceAll(s, ":", "_c")
	return s
}

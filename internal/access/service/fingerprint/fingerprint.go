// Package fingerprint derives opaque device fingerprints from client request
// data and compares them without leaking timing information.
package fingerprint

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// Request data keys recognized by Compute.
const (
	KeyUserAgent        = "user_agent"
	KeyAcceptLanguage   = "accept_language"
	KeyScreenResolution = "screen_resolution"
	KeyTimezone         = "timezone"
	KeyPlatform         = "platform"
	KeyPlugins          = "plugins"
	KeyCanvas           = "canvas_fingerprint"
	KeyWebGL            = "webgl_fingerprint"
)

// componentKeys fixes the order components are hashed in.
var componentKeys = []string{
	KeyAcceptLanguage,
	KeyScreenResolution,
	KeyTimezone,
	KeyPlatform,
	KeyPlugins,
	KeyCanvas,
	KeyWebGL,
}

// Compute hashes the device-identifying request data into a 64 character hex
// digest. The user agent is reduced to browser family, major version, OS and
// form factor so routine browser updates keep the same fingerprint. Returns ""
// when no component is present.
func Compute(requestData map[string]string) string {
	components := make([]string, 0, len(componentKeys)+1)
	components = append(components, normalizeUserAgent(requestData[KeyUserAgent]))

	present := components[0] != ""
	for _, key := range componentKeys {
		v := strings.TrimSpace(requestData[key])
		present = present || v != ""
		components = append(components, v)
	}
	if !present {
		return ""
	}

	encoded, err := json.Marshal(components)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}

// FromUserAgent computes a fingerprint from the User-Agent header alone.
// IP addresses are deliberately excluded; they feed the risk signals instead.
func FromUserAgent(userAgent string) string {
	return Compute(map[string]string{KeyUserAgent: userAgent})
}

// Match compares stored and presented fingerprints in constant time.
func Match(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

func normalizeUserAgent(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return ""
	}

	ua := useragent.New(userAgent)
	browser, version := ua.Browser()

	majorVersion := "unknown"
	if major, _, _ := strings.Cut(version, "."); major != "" {
		majorVersion = major
	}

	platform := "desktop"
	if ua.Mobile() {
		platform = "mobile"
	}

	browser = strings.ToLower(strings.TrimSpace(browser))
	if browser == "" {
		browser = "unknown"
	}
	os := strings.ToLower(strings.TrimSpace(ua.OS()))
	if os == "" {
		os = "unknown"
	}

	return fmt.Sprintf("%s|%s|%s|%s", browser, majorVersion, os, platform)
}

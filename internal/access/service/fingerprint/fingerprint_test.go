package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"aegis/pkg/validation"
)

const (
	chrome120      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	chrome120Patch = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.129 Safari/537.36"
	chrome121      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	safariIPhone   = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
)

func TestCompute(t *testing.T) {
	t.Run("empty request data yields no fingerprint", func(t *testing.T) {
		assert.Empty(t, Compute(nil))
		assert.Empty(t, Compute(map[string]string{KeyUserAgent: "  "}))
	})

	t.Run("digest is a valid fingerprint", func(t *testing.T) {
		fp := Compute(map[string]string{KeyUserAgent: chrome120, KeyTimezone: "Europe/Berlin"})
		assert.NoError(t, validation.Fingerprint(fp))
	})

	t.Run("deterministic", func(t *testing.T) {
		data := map[string]string{KeyUserAgent: chrome120, KeyAcceptLanguage: "en-US", KeyScreenResolution: "1920x1080"}
		assert.Equal(t, Compute(data), Compute(data))
	})

	t.Run("patch releases keep the fingerprint", func(t *testing.T) {
		assert.Equal(t, FromUserAgent(chrome120), FromUserAgent(chrome120Patch))
	})

	t.Run("major version changes the fingerprint", func(t *testing.T) {
		assert.NotEqual(t, FromUserAgent(chrome120), FromUserAgent(chrome121))
	})

	t.Run("form factor changes the fingerprint", func(t *testing.T) {
		assert.NotEqual(t, FromUserAgent(chrome120), FromUserAgent(safariIPhone))
	})

	t.Run("every component contributes", func(t *testing.T) {
		base := map[string]string{KeyUserAgent: chrome120}
		baseline := Compute(base)
		for _, key := range componentKeys {
			data := map[string]string{KeyUserAgent: chrome120, key: "x"}
			assert.NotEqual(t, baseline, Compute(data), key)
		}
	})

	t.Run("components are positional", func(t *testing.T) {
		a := Compute(map[string]string{KeyTimezone: "UTC"})
		b := Compute(map[string]string{KeyPlatform: "UTC"})
		assert.NotEqual(t, a, b)
	})
}

func TestMatch(t *testing.T) {
	fp := FromUserAgent(chrome120)
	assert.True(t, Match(fp, fp))
	assert.False(t, Match(fp, FromUserAgent(safariIPhone)))
	assert.False(t, Match(fp, ""))
	assert.False(t, Match(fp, fp[:32]))
}

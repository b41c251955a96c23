package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "aegis/pkg/domain-errors"
)

func TestIP(t *testing.T) {
	for _, ip := range []string{"203.0.113.7", "10.0.0.1", "2001:db8::1"} {
		assert.NoError(t, IP(ip), ip)
	}

	for _, ip := range []string{"", "999.1.1.1", "not-an-ip", "10.0.0.1/24"} {
		err := IP(ip)
		require.Error(t, err, ip)
		assert.True(t, dErrors.IsValidation(err))
	}
}

func TestUsername(t *testing.T) {
	assert.NoError(t, Username("alice_01"))
	assert.NoError(t, Username("bob-smith"))

	err := Username("al")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username must be 3-30 characters")

	assert.Error(t, Username("alice@example.com"))
	assert.Error(t, Username(strings.Repeat("a", 31)))
	assert.Error(t, Username(""))
}

func TestFingerprint(t *testing.T) {
	assert.NoError(t, Fingerprint(strings.Repeat("ab", 32)))

	err := Fingerprint(strings.Repeat("AB", 32))
	require.Error(t, err)
	assert.Equal(t, "fingerprint must be a 64 character hex digest", err.Error())

	assert.Error(t, Fingerprint("abc"))
}

func TestValidateStruct(t *testing.T) {
	type request struct {
		SourceIP string `validate:"required,ip"`
		Note     string `validate:"notblank"`
	}

	err := Validate(request{SourceIP: "nope", Note: "x"})
	require.Error(t, err)
	assert.Equal(t, "source_ip must be a valid IP address", err.Error())

	err = Validate(request{SourceIP: "192.0.2.1", Note: "   "})
	require.Error(t, err)
	assert.Equal(t, "note must not be blank", err.Error())

	assert.NoError(t, Validate(request{SourceIP: "192.0.2.1", Note: "ok"}))
}

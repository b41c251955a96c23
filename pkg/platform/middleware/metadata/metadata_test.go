package metadata

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/pkg/requestcontext"
)

func request(remote, xff string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = remote
	if xff != "" {
		r.Header.Set("X-Forwarded-For", xff)
	}
	return r
}

func TestClientIP(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.0.2.1"})
	require.NoError(t, err)
	m := New(trusted)

	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"direct client", "198.51.100.4:5000", "", "198.51.100.4"},
		{"untrusted peer cannot spoof", "198.51.100.4:5000", "203.0.113.9", "198.51.100.4"},
		{"trusted proxy forwards client", "10.1.2.3:443", "203.0.113.9", "203.0.113.9"},
		{"proxy chain skips trusted hops", "10.1.2.3:443", "203.0.113.9, 192.0.2.1, 10.4.4.4", "203.0.113.9"},
		{"rightmost untrusted hop wins", "10.1.2.3:443", "1.1.1.1, 203.0.113.9", "203.0.113.9"},
		{"garbage hop falls back to peer", "10.1.2.3:443", "203.0.113.9, nope", "10.1.2.3"},
		{"ipv6 peer", "[2001:db8::1]:443", "", "2001:db8::1"},
		{"mapped ipv4 peer", "[::ffff:198.51.100.4]:443", "", "198.51.100.4"},
		{"oversized header", "10.1.2.3:443", strings.Repeat("1.1.1.1,", 100), "10.1.2.3"},
		{"unparseable peer", "pipe", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.ClientIP(request(tt.remote, tt.xff)))
		})
	}
}

func TestNoTrustedProxiesIgnoresHeaders(t *testing.T) {
	m := New(nil)
	assert.Equal(t, "10.1.2.3", m.ClientIP(request("10.1.2.3:443", "203.0.113.9")))
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies([]string{" 10.0.0.0/8 ", "", "::1"})
	require.NoError(t, err)
	require.Len(t, prefixes, 2)
	assert.Equal(t, "10.0.0.0/8", prefixes[0].String())
	assert.Equal(t, "::1/128", prefixes[1].String())

	_, err = ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	assert.Error(t, err)
}

func TestHandlerStoresMetadata(t *testing.T) {
	var ip, ua string
	handler := New(nil).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		ua = requestcontext.UserAgent(r.Context())
	}))

	r := request("198.51.100.4:5000", "")
	r.Header.Set("User-Agent", "curl/8.5.0")
	handler.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "198.51.100.4", ip)
	assert.Equal(t, "curl/8.5.0", ua)
}

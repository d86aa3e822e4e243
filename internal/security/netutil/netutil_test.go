package netutil

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPrivateIP(t *testing.T) {
	tests := map[string]bool{
		"127.0.0.1":       true,
		"::1":             true,
		"10.1.2.3":        true,
		"172.20.0.1":      true,
		"172.32.0.1":      false,
		"192.168.0.10":    true,
		"169.254.1.1":     true,
		"100.100.0.1":     true,
		"fd12::1":         true,
		"fe80::1":         true,
		"::ffff:10.0.0.1": true,
		"8.8.8.8":         false,
		"2001:4860::8888": false,
		"::ffff:8.8.8.8":  false,
	}
	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			assert.Equal(t, want, IsPrivateIP(net.ParseIP(raw)))
		})
	}
}

func TestIsPrivateIP_Invalid(t *testing.T) {
	assert.False(t, IsPrivateIP(nil))
	assert.False(t, IsPrivateIP(net.IP{1, 2, 3}))
}

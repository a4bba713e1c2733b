package vpn

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOpenVPN(t *testing.T) {
	cfg, err := RenderOpenVPN("user@example.com", "acc-123", "us-west-1.mistcurrent.com")
	require.NoError(t, err)

	for _, directive := range []string{
		"client",
		"dev tun",
		"proto udp",
		"remote us-west-1.mistcurrent.com 1194",
		"remote-cert-tls server",
		"cipher AES-256-CBC",
		"auth SHA256",
		"tls-auth ta.key 1",
		"dhcp-option DNS 8.8.8.8",
		"dhcp-option DNS 8.8.4.4",
	} {
		assert.Contains(t, cfg, directive)
	}
	assert.Contains(t, cfg, "# User: user@example.com")
	assert.Contains(t, cfg, "# Access: acc-123")
}

func TestRenderWireGuard(t *testing.T) {
	cfg, err := RenderWireGuard("jp-tokyo-1.mistcurrent.com")
	require.NoError(t, err)

	assert.Contains(t, cfg, "[Interface]")
	assert.Contains(t, cfg, "[Peer]")
	assert.Contains(t, cfg, "Address = 10.8.0.2/24")
	assert.Contains(t, cfg, "AllowedIPs = 0.0.0.0/0")
	assert.Contains(t, cfg, "Endpoint = jp-tokyo-1.mistcurrent.com:51820")
	assert.Contains(t, cfg, "PersistentKeepalive = 25")

	priv := extractKey(t, cfg, "PrivateKey = ")
	pub := extractKey(t, cfg, "PublicKey = ")
	assert.NotEqual(t, priv, pub)

	// Keys must be valid 32-byte base64, as WireGuard expects.
	for _, key := range []string{priv, pub} {
		raw, err := base64.StdEncoding.DecodeString(key)
		require.NoError(t, err)
		assert.Len(t, raw, 32)
	}
}

func TestRenderWireGuardFreshKeys(t *testing.T) {
	first, err := RenderWireGuard("us-east-1.mistcurrent.com")
	require.NoError(t, err)
	second, err := RenderWireGuard("us-east-1.mistcurrent.com")
	require.NoError(t, err)

	assert.NotEqual(t, extractKey(t, first, "PrivateKey = "), extractKey(t, second, "PrivateKey = "))
}

func extractKey(t *testing.T, cfg, prefix string) string {
	t.Helper()
	for _, line := range strings.Split(cfg, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimPrefix(line, prefix)
		}
	}
	t.Fatalf("no line with prefix %q", prefix)
	return ""
}

func TestSubscriptionURL(t *testing.T) {
	url := SubscriptionURL("https://vpn.mistcurrent.com", "a+b@example.com", "tok123", "2 Year Plan")

	assert.Equal(t,
		"https://vpn.mistcurrent.com/subscribe?user=a%2Bb%40example.com&token=tok123&plan=2+Year+Plan",
		url)
}

func TestServerFromHostname(t *testing.T) {
	tests := []struct {
		hostname string
		region   string
		country  string
	}{
		{"us-west-1.mistcurrent.com", "us-west-1", "United States"},
		{"uk-london-1.mistcurrent.com", "uk-london-1", "United Kingdom"},
		{"jp-tokyo-1.mistcurrent.com", "jp-tokyo-1", "Japan"},
		{"sg-singapore-1.mistcurrent.com", "sg-singapore-1", "Singapore"},
		{"mars-base-1.mistcurrent.com", "mars-base-1", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.hostname, func(t *testing.T) {
			s := ServerFromHostname(tt.hostname)
			assert.Equal(t, tt.region, s.Region)
			assert.Equal(t, tt.country, s.Country)
		})
	}
}

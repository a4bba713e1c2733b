package vpn

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"text/template"

	"golang.org/x/crypto/curve25519"
)

// Supported client configuration protocols.
const (
	ProtocolOpenVPN   = "openvpn"
	ProtocolWireGuard = "wireguard"
)

var openVPNTemplate = template.Must(template.New("openvpn").Parse(`# MistCurrent VPN Configuration
# User: {{ .Email }}
# Access: {{ .AccessID }}

client
dev tun
proto udp
remote {{ .Server }} 1194
resolv-retry infinite
nobind
persist-key
persist-tun
ca ca.crt
cert client.crt
key client.key
remote-cert-tls server
cipher AES-256-CBC
comp-lzo
verb 3

# DNS
dhcp-option DNS 8.8.8.8
dhcp-option DNS 8.8.4.4

# Kill switch
route-method exe
route-delay 2

tls-auth ta.key 1
auth SHA256
`))

var wireGuardTemplate = template.Must(template.New("wireguard").Parse(`[Interface]
PrivateKey = {{ .PrivateKey }}
Address = 10.8.0.2/24
DNS = 8.8.8.8, 8.8.4.4

[Peer]
PublicKey = {{ .PublicKey }}
AllowedIPs = 0.0.0.0/0
Endpoint = {{ .Server }}:51820
PersistentKeepalive = 25
`))

type configData struct {
	Email      string
	AccessID   string
	Server     string
	PrivateKey string
	PublicKey  string
}

// RenderOpenVPN renders an OpenVPN client profile for the given user
// against the primary server.
func RenderOpenVPN(email, accessID, server string) (string, error) {
	var buf bytes.Buffer
	err := openVPNTemplate.Execute(&buf, configData{
		Email:    email,
		AccessID: accessID,
		Server:   server,
	})
	if err != nil {
		return "", fmt.Errorf("render openvpn config: %w", err)
	}
	return buf.String(), nil
}

// RenderWireGuard renders a WireGuard client profile with a freshly
// generated Curve25519 key pair.
func RenderWireGuard(server string) (string, error) {
	priv, pub, err := wireGuardKeyPair()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = wireGuardTemplate.Execute(&buf, configData{
		Server:     server,
		PrivateKey: priv,
		PublicKey:  pub,
	})
	if err != nil {
		return "", fmt.Errorf("render wireguard config: %w", err)
	}
	return buf.String(), nil
}

// wireGuardKeyPair generates a Curve25519 key pair encoded the way
// WireGuard expects: 32 bytes, base64, private key clamped.
func wireGuardKeyPair() (string, string, error) {
	priv := make([]byte, curve25519.ScalarSize)
	if _, err := rand.Read(priv); err != nil {
		return "", "", fmt.Errorf("generate wireguard key: %w", err)
	}
	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64

	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return "", "", fmt.Errorf("derive wireguard public key: %w", err)
	}

	enc := base64.StdEncoding
	return enc.EncodeToString(priv), enc.EncodeToString(pub), nil
}

// SubscriptionURL builds the client subscription link handed to VPN
// apps that support remote profile updates.
func SubscriptionURL(baseURL, email, token, planName string) string {
	return fmt.Sprintf("%s/subscribe?user=%s&token=%s&plan=%s",
		baseURL,
		url.QueryEscape(email),
		url.QueryEscape(token),
		url.QueryEscape(planName),
	)
}

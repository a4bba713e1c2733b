package vpn

import "errors"

var (
	// ErrAccessNotFound is returned when a user has no provisioned VPN access.
	ErrAccessNotFound = errors.New("vpn access not found")

	// ErrAccessSuspended is returned when access exists but has been suspended.
	ErrAccessSuspended = errors.New("vpn access suspended")

	// ErrUnknownProtocol is returned for a protocol outside openvpn/wireguard.
	ErrUnknownProtocol = errors.New("unknown vpn protocol")

	// ErrNoServers is returned when the fleet configuration is empty.
	ErrNoServers = errors.New("no vpn servers configured")
)

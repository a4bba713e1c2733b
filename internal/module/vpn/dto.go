package vpn

import "time"

// AccessResponse is the account view of VPN access.
type AccessResponse struct {
	Status          string           `json:"status"`
	Server          string           `json:"server"`
	DevicesLimit    int              `json:"devices_limit"`
	ProvisionedAt   time.Time        `json:"provisioned_at"`
	SubscriptionURL string           `json:"subscription_url"`
	Servers         []ServerResponse `json:"servers"`
}

// ServerResponse describes one VPN endpoint.
type ServerResponse struct {
	Hostname string `json:"hostname"`
	Region   string `json:"region"`
	Country  string `json:"country"`
}

// ConfigURLResponse carries a short-lived config download link.
type ConfigURLResponse struct {
	Protocol  string    `json:"protocol"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toServerResponses(servers []Server) []ServerResponse {
	resp := make([]ServerResponse, len(servers))
	for i, s := range servers {
		resp[i] = ServerResponse{Hostname: s.Hostname, Region: s.Region, Country: s.Country}
	}
	return resp
}

func toAccessResponse(summary *AccessSummary) AccessResponse {
	return AccessResponse{
		Status:          string(summary.Access.Status),
		Server:          summary.Access.Server,
		DevicesLimit:    summary.Access.DevicesLimit,
		ProvisionedAt:   summary.Access.ProvisionedAt,
		SubscriptionURL: summary.SubscriptionURL,
		Servers:         toServerResponses(summary.Servers),
	}
}

// Package vpn provisions VPN access for paid subscribers: subscription
// tokens, per-protocol client configuration files and the server list.
package vpn

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AccessStatus represents the lifecycle state of a user's VPN access.
type AccessStatus string

const (
	AccessStatusActive    AccessStatus = "active"
	AccessStatusSuspended AccessStatus = "suspended"
)

// Access grants a user entry to the VPN fleet. One row per user; the
// token is embedded in subscription and download URLs and rotates when
// access is re-provisioned after a suspension.
type Access struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex"`
	PlanID string    `json:"plan_id" gorm:"not null"`

	Token  string       `json:"-" gorm:"uniqueIndex;not null"`
	Server string       `json:"server" gorm:"not null"`
	Status AccessStatus `json:"status" gorm:"not null;default:'active'"`

	DevicesLimit int `json:"devices_limit" gorm:"not null"`

	ProvisionedAt time.Time `json:"provisioned_at" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Access) TableName() string {
	return "vpn_accesses"
}

// Server describes one VPN endpoint in the fleet.
type Server struct {
	Hostname string `json:"hostname"`
	Region   string `json:"region"`
	Country  string `json:"country"`
}

// countryNames maps region hostname prefixes to display names.
var countryNames = map[string]string{
	"us": "United States",
	"uk": "United Kingdom",
	"jp": "Japan",
	"sg": "Singapore",
	"de": "Germany",
	"fr": "France",
	"ca": "Canada",
	"au": "Australia",
}

// ServerFromHostname derives region and country from a fleet hostname
// such as "us-west-1.mistcurrent.com".
func ServerFromHostname(hostname string) Server {
	region := hostname
	if i := strings.IndexByte(hostname, '.'); i > 0 {
		region = hostname[:i]
	}

	country := "Unknown"
	if i := strings.IndexByte(region, '-'); i > 0 {
		if name, ok := countryNames[region[:i]]; ok {
			country = name
		}
	}

	return Server{Hostname: hostname, Region: region, Country: country}
}

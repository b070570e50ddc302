package entities

import "time"

// Connection statuses stored locally. The provider reports its own states
// (connecting/close/open); those never land in this column directly.
const (
	StatusConnected = "connected"
	StatusPause     = "pause"
	StatusOffline   = "offline"
)

const (
	QRPrivacyPublic  = "public"
	QRPrivacyPrivate = "private"
)

// ConnectionTypes lists the accepted channel types.
var ConnectionTypes = []string{"whatsapp", "instagram", "telegram"}

// Connection is one messaging channel configured by a user. Its ID doubles as
// the provider-side instanceName.
type Connection struct {
	ID                string    `json:"id"`
	UserID            int       `json:"userid"`
	Name              string    `json:"name"`
	Type              string    `json:"type"`
	Status            string    `json:"status"`
	Webhook           string    `json:"webhook"`
	QRPrivacy         string    `json:"qrPrivacy"`
	CustomTitle       string    `json:"customTitle"`
	CustomLogo        string    `json:"customLogo"`
	CustomDescription string    `json:"customDescription"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"-"`
}

// ConnectionSummary is the list-view projection.
type ConnectionSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

func ValidConnectionType(t string) bool {
	for _, v := range ConnectionTypes {
		if v == t {
			return true
		}
	}
	return false
}

func ValidStatus(s string) bool {
	return s == StatusConnected || s == StatusPause || s == StatusOffline
}

func ValidQRPrivacy(p string) bool {
	return p == QRPrivacyPublic || p == QRPrivacyPrivate
}

package entities

import "strings"

// Provider-reported connection states.
const (
	InstanceConnecting = "connecting"
	InstanceClose      = "close"
	InstanceOpen       = "open"
)

// Instance is the provider-side session backing a connection. Raw keeps the
// provider's full object for pass-through responses.
type Instance struct {
	Name             string         `json:"name"`
	ConnectionStatus string         `json:"connectionStatus"`
	OwnerJid         string         `json:"ownerJid"`
	ProfilePicURL    string         `json:"profilePicUrl"`
	Raw              map[string]any `json:"-"`
}

// PhoneNumber extracts the number part of ownerJid (everything before the @).
// Empty when the instance has never paired.
func (i *Instance) PhoneNumber() string {
	if i == nil || i.OwnerJid == "" {
		return ""
	}
	if idx := strings.Index(i.OwnerJid, "@"); idx > 0 {
		return i.OwnerJid[:idx]
	}
	return ""
}

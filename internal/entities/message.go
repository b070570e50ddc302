package entities

// Message types as reported by the provider webhook.
const (
	TypeConversation = "conversation"
	TypeImage        = "imageMessage"
	TypeVideo        = "videoMessage"
	TypeAudio        = "audioMessage"
	TypeDocument     = "documentMessage"
)

// InboundPayload is the provider webhook body received on /queue.
type InboundPayload struct {
	Instance string      `json:"instance"`
	Data     InboundData `json:"data"`
}

type InboundData struct {
	Key         MessageKey     `json:"key"`
	MessageType string         `json:"messageType"`
	Message     MessageContent `json:"message"`
}

type MessageKey struct {
	RemoteJid string `json:"remoteJid"`
}

type MessageContent struct {
	Conversation    string        `json:"conversation,omitempty"`
	ImageMessage    *MediaMessage `json:"imageMessage,omitempty"`
	VideoMessage    *MediaMessage `json:"videoMessage,omitempty"`
	AudioMessage    *MediaMessage `json:"audioMessage,omitempty"`
	DocumentMessage *MediaMessage `json:"documentMessage,omitempty"`
	Base64          string        `json:"base64,omitempty"`
}

type MediaMessage struct {
	Caption  string `json:"caption,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

// Envelope is the normalized payload relayed to a connection's downstream
// webhook, and the body accepted by /sendResponse (where interfaceId is the
// legacy alias for connectionId).
type Envelope struct {
	ConnectionID string  `json:"connectionId"`
	InterfaceID  string  `json:"interfaceId,omitempty"`
	Type         string  `json:"type"`
	Path         *string `json:"path"`
	Body         string  `json:"body"`
	Number       string  `json:"number"`
}

// TargetID resolves the connection id, honoring the legacy field name.
func (e *Envelope) TargetID() string {
	if e.ConnectionID != "" {
		return e.ConnectionID
	}
	return e.InterfaceID
}

// PathValue returns the staged file reference, empty when absent.
func (e *Envelope) PathValue() string {
	if e.Path == nil {
		return ""
	}
	return *e.Path
}

// Body extracts the relayable text for the payload's message type. Audio
// messages carry no caption.
func (d *InboundData) BodyText() string {
	switch d.MessageType {
	case TypeConversation:
		return d.Message.Conversation
	case TypeImage:
		if d.Message.ImageMessage != nil {
			return d.Message.ImageMessage.Caption
		}
	case TypeVideo:
		if d.Message.VideoMessage != nil {
			return d.Message.VideoMessage.Caption
		}
	case TypeDocument:
		if d.Message.DocumentMessage != nil {
			return d.Message.DocumentMessage.Caption
		}
	}
	return ""
}

// DocumentFileName returns the original file name for document messages, if any.
func (d *InboundData) DocumentFileName() string {
	if d.Message.DocumentMessage != nil {
		return d.Message.DocumentMessage.FileName
	}
	return ""
}

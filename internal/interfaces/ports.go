package interfaces

import (
	"context"

	"chatfuse/internal/entities"
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, user *entities.User) error
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindByPhone(ctx context.Context, phone string) (*entities.User, error)
}

// ConnectionStore persists messaging-channel connections.
type ConnectionStore interface {
	Insert(ctx context.Context, conn *entities.Connection) error
	ListByUser(ctx context.Context, userID int) ([]entities.Connection, error)
	GetByID(ctx context.Context, id string) (*entities.Connection, error)
	Update(ctx context.Context, id string, fields map[string]string) (*entities.Connection, error)
	Delete(ctx context.Context, id string) error
}

// Provider is the messaging provider's REST surface used by the orchestrators.
type Provider interface {
	CreateInstance(ctx context.Context, name string) error
	DeleteInstance(ctx context.Context, name string) error
	FetchInstance(ctx context.Context, name string) (*entities.Instance, error)
	ConnectInstance(ctx context.Context, name string) (string, error)
	SetWebhook(ctx context.Context, name, webhookURL string, events []string) error
	FindWebhook(ctx context.Context, name string) (string, error)
	SendText(ctx context.Context, instance, number, text string) (map[string]any, error)
	SendMedia(ctx context.Context, instance, number, mediaType, caption, media string) (map[string]any, error)
	SendAudio(ctx context.Context, instance, number, audio string) (map[string]any, error)
}

// MediaStager stages inbound base64 media to local files served by /getFile.
type MediaStager interface {
	Stage(base64Data, remoteJid, messageType, originalName string) (string, error)
	Path(fileName string) (string, error)
}

// Forwarder delivers relay envelopes to downstream webhooks.
type Forwarder interface {
	Forward(ctx context.Context, webhookURL string, env *entities.Envelope) error
}

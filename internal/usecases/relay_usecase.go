package usecases

import (
	"context"
	"encoding/json"
	"strings"

	"chatfuse/internal/entities"
	"chatfuse/internal/interfaces"
	"go.uber.org/zap"
)

// ValidationError marks a request-shaped failure the handler maps to a 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RelayUsecase moves inbound provider webhooks to downstream webhooks and
// outbound envelopes back to the provider. The inbound path is fail-open: the
// provider always gets a success so it never backs off on our account.
type RelayUsecase struct {
	connections interfaces.ConnectionStore
	provider    interfaces.Provider
	media       interfaces.MediaStager
	forwarder   interfaces.Forwarder
}

func NewRelayUsecase(connections interfaces.ConnectionStore, provider interfaces.Provider, media interfaces.MediaStager, forwarder interfaces.Forwarder) *RelayUsecase {
	return &RelayUsecase{
		connections: connections,
		provider:    provider,
		media:       media,
		forwarder:   forwarder,
	}
}

// NormalizeSender leaves group jids untouched and turns direct jids into a
// +-prefixed number.
func NormalizeSender(remoteJid string) string {
	if strings.HasSuffix(remoteJid, "@g.us") {
		return remoteJid
	}
	return "+" + strings.SplitN(remoteJid, "@", 2)[0]
}

// HandleInbound processes one provider webhook. Media is staged to a local
// file first; the envelope then goes to the connection's webhook if one is
// configured. Forwarding and lookup failures are logged and swallowed.
func (uc *RelayUsecase) HandleInbound(ctx context.Context, payload *entities.InboundPayload) {
	from := NormalizeSender(payload.Data.Key.RemoteJid)
	body := payload.Data.BodyText()

	var path *string
	if payload.Data.MessageType != entities.TypeConversation {
		fileName, err := uc.media.Stage(payload.Data.Message.Base64,
			payload.Data.Key.RemoteJid, payload.Data.MessageType, payload.Data.DocumentFileName())
		if err != nil {
			zap.S().Errorf("stage media for %s: %v", payload.Instance, err)
		} else {
			path = &fileName
		}
	}

	env := &entities.Envelope{
		ConnectionID: payload.Instance,
		Type:         payload.Data.MessageType,
		Path:         path,
		Body:         body,
		Number:       from,
	}

	var webhookURL string
	conn, err := uc.connections.GetByID(ctx, payload.Instance)
	if err != nil {
		zap.S().Errorf("look up connection %s: %v", payload.Instance, err)
	} else if conn != nil {
		webhookURL = conn.Webhook
	}

	if webhookURL == "" {
		data, _ := json.Marshal(env)
		zap.S().Infof("no webhook configured for %s, dropping envelope: %s", payload.Instance, data)
		return
	}

	if err := uc.forwarder.Forward(ctx, webhookURL, env); err != nil {
		zap.S().Errorf("forward to %s for connection %s: %v", webhookURL, payload.Instance, err)
	}
}

// SendDirect dispatches an explicit envelope straight to the provider. Field
// requirements depend on the message type.
func (uc *RelayUsecase) SendDirect(ctx context.Context, env *entities.Envelope) (map[string]any, error) {
	id := env.TargetID()
	if id == "" || env.Type == "" || env.Number == "" {
		return nil, &ValidationError{"Faltan campos requeridos: interfaceId, type y number son obligatorios"}
	}

	switch env.Type {
	case entities.TypeImage, entities.TypeVideo:
		if env.PathValue() == "" {
			return nil, &ValidationError{"El campo 'path' es requerido para mensajes de video e imagen"}
		}
		mediaType := "image"
		if env.Type == entities.TypeVideo {
			mediaType = "video"
		}
		return uc.provider.SendMedia(ctx, id, env.Number, mediaType, env.Body, env.PathValue())

	case entities.TypeAudio:
		if env.PathValue() == "" {
			return nil, &ValidationError{"El campo 'path' es requerido para mensajes de audio"}
		}
		return uc.provider.SendAudio(ctx, id, env.Number, env.PathValue())

	case entities.TypeConversation:
		if env.Body == "" {
			return nil, &ValidationError{"El campo 'body' es requerido para mensajes de texto"}
		}
		return uc.provider.SendText(ctx, id, env.Number, env.Body)

	default:
		return nil, &ValidationError{"Tipo de mensaje no válido"}
	}
}

package usecases

import (
	"context"
	"errors"
	"time"

	"chatfuse/internal/entities"
	"chatfuse/internal/interfaces"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoQRPending means the instance is not in a state that yields a pairing code.
var ErrNoQRPending = errors.New("no QR pending for this connection")

// recreateGrace is how long to wait after deleting a provider instance before
// recreating it. The provider gives no teardown acknowledgment.
const recreateGrace = 3 * time.Second

// LifecycleUsecase drives QR issuance, connect and teardown/recreate sequences
// against the provider, keeping the local status column roughly in sync.
type LifecycleUsecase struct {
	connections interfaces.ConnectionStore
	provider    interfaces.Provider
	grace       time.Duration
}

func NewLifecycleUsecase(connections interfaces.ConnectionStore, provider interfaces.Provider) *LifecycleUsecase {
	return &LifecycleUsecase{
		connections: connections,
		provider:    provider,
		grace:       recreateGrace,
	}
}

// Create inserts the connection row, then creates the provider instance under
// the same id. A provider failure fails the call; the row stays behind as an
// offline connection the caller can retry against.
func (uc *LifecycleUsecase) Create(ctx context.Context, userID int, name, connType string) (*entities.Connection, error) {
	conn := &entities.Connection{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Type:      connType,
		Status:    entities.StatusOffline,
		QRPrivacy: entities.QRPrivacyPrivate,
	}
	if err := uc.connections.Insert(ctx, conn); err != nil {
		return nil, err
	}

	if err := uc.provider.CreateInstance(ctx, conn.ID); err != nil {
		zap.S().Warnf("connection %s row kept without provider instance: %v", conn.ID, err)
		return nil, err
	}
	return conn, nil
}

// GetQR implements the polling state machine. The return value is whatever the
// caller should serialize as the response body; a missing instance is reported
// inside a 200 so polling clients keep polling.
func (uc *LifecycleUsecase) GetQR(ctx context.Context, id string, connect bool) (map[string]any, error) {
	inst, err := uc.provider.FetchInstance(ctx, id)
	if errors.Is(err, entities.ErrInstanceNotFound) {
		return map[string]any{"error": "Interface no encontrada"}, nil
	}
	if err != nil {
		return nil, err
	}

	switch inst.ConnectionStatus {
	case entities.InstanceConnecting, entities.InstanceClose:
		if !connect {
			return map[string]any{"status": "close", "qr": nil}, nil
		}
		code, err := uc.provider.ConnectInstance(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"status": "waiting", "qr": code, "type": 1, "url": nil}, nil

	case entities.InstanceOpen:
		// Best-effort status sync; a write failure must not break polling.
		if _, err := uc.connections.Update(ctx, id, map[string]string{"status": entities.StatusConnected}); err != nil {
			zap.S().Errorf("update connection %s status to connected: %v", id, err)
		}
		return map[string]any{"status": "ready", "url": nil}, nil

	default:
		return inst.Raw, nil
	}
}

// QRCode returns the raw pairing code for rendering, without the polling
// envelope. Used by the QR image endpoint.
func (uc *LifecycleUsecase) QRCode(ctx context.Context, id string) (string, error) {
	inst, err := uc.provider.FetchInstance(ctx, id)
	if err != nil {
		return "", err
	}
	if inst.ConnectionStatus != entities.InstanceConnecting && inst.ConnectionStatus != entities.InstanceClose {
		return "", ErrNoQRPending
	}
	return uc.provider.ConnectInstance(ctx, id)
}

// StopQR tears down the provider instance and recreates it after a fixed grace
// period. If the recreate fails the connection is left offline with no backing
// instance; the caller retries.
func (uc *LifecycleUsecase) StopQR(ctx context.Context, id string) error {
	if err := uc.provider.DeleteInstance(ctx, id); err != nil {
		return err
	}

	if _, err := uc.connections.Update(ctx, id, map[string]string{"status": entities.StatusOffline}); err != nil {
		zap.S().Errorf("update connection %s status to offline: %v", id, err)
	}

	select {
	case <-time.After(uc.grace):
	case <-ctx.Done():
		return ctx.Err()
	}

	return uc.provider.CreateInstance(ctx, id)
}

// InstanceInfo fetches the provider instance for view enrichment. Failures are
// logged and reported as absent.
func (uc *LifecycleUsecase) InstanceInfo(ctx context.Context, id string) *entities.Instance {
	inst, err := uc.provider.FetchInstance(ctx, id)
	if err != nil {
		if !errors.Is(err, entities.ErrInstanceNotFound) {
			zap.S().Errorf("fetch instance %s: %v", id, err)
		}
		return nil
	}
	return inst
}

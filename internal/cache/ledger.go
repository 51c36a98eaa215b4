// internal/cache/ledger.go
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ledgerTTL keeps delivery markers alive comfortably longer than any send
// job's retry window, then lets them expire on their own.
const ledgerTTL = 24 * time.Hour

// DeliveryLedger records which destination channels a lobby's reminder has
// already reached, so a redelivered send job only retries the destinations
// that actually failed. Best effort: losing a marker costs at most one
// duplicate message.
type DeliveryLedger struct{}

// NewDeliveryLedger returns a ledger over the global Redis client.
func NewDeliveryLedger() *DeliveryLedger {
	return &DeliveryLedger{}
}

func ledgerKey(lobbyID uuid.UUID, channelID string) string {
	return fmt.Sprintf("reminder:%s:%s", lobbyID, channelID)
}

// Delivered reports whether the reminder already reached the channel.
func (dl *DeliveryLedger) Delivered(ctx context.Context, lobbyID uuid.UUID, channelID string) (bool, error) {
	n, err := Rdb.Exists(ctx, ledgerKey(lobbyID, channelID)).Result()
	if err != nil {
		return false, fmt.Errorf("ledger exists: %w", err)
	}
	return n > 0, nil
}

// MarkDelivered records a successful delivery to the channel.
func (dl *DeliveryLedger) MarkDelivered(ctx context.Context, lobbyID uuid.UUID, channelID string) error {
	if err := Rdb.Set(ctx, ledgerKey(lobbyID, channelID), 1, ledgerTTL).Err(); err != nil {
		return fmt.Errorf("ledger set: %w", err)
	}
	return nil
}

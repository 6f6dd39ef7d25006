package mqtt

import (
	"context"
	"encoding/json"

	"github.com/jaytnw/motel-service/internal/models"
	"go.uber.org/zap"
)

// RoomEventPublisher pushes room transitions to <prefix>/rooms/<roomId>/state as retained JSON,
// so a late subscriber still sees each room's current state.
type RoomEventPublisher struct {
	client Client
	prefix string
	logger *zap.Logger
}

func NewRoomEventPublisher(client Client, prefix string, logger *zap.Logger) *RoomEventPublisher {
	return &RoomEventPublisher{client: client, prefix: prefix, logger: logger}
}

func (p *RoomEventPublisher) Topic(roomID string) string {
	return p.prefix + "/rooms/" + roomID + "/state"
}

func (p *RoomEventPublisher) PublishRoomEvent(ctx context.Context, event models.RoomEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := p.Topic(event.RoomID)
	if err := p.client.Publish(topic, payload, true); err != nil {
		p.logger.Warn("room event not published", zap.String("topic", topic), zap.Error(err))
		return err
	}
	p.logger.Debug("room event published", zap.String("topic", topic), zap.String("to_state", string(event.ToState)))
	return nil
}

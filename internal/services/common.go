package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jaytnw/motel-service/internal/apperr"
	"github.com/jaytnw/motel-service/internal/models"
	"github.com/jaytnw/motel-service/internal/repository"
	"go.uber.org/zap"
)

// EventPublisher announces room state changes to other systems.
type EventPublisher interface {
	PublishRoomEvent(ctx context.Context, event models.RoomEvent) error
}

type noopPublisher struct{}

func (noopPublisher) PublishRoomEvent(context.Context, models.RoomEvent) error { return nil }

// NoopPublisher is used when no broker is configured.
func NoopPublisher() EventPublisher { return noopPublisher{} }

func isAdmin(role string) bool {
	return strings.EqualFold(strings.TrimSpace(role), string(models.RoleAdmin))
}

func requireAdmin(role, message string) error {
	if !isAdmin(role) {
		return apperr.Validation(message)
	}
	return nil
}

func storeError(action string, err error) error {
	return apperr.Internal("Error al "+action, err)
}

// loadRoom fetches a room, mapping a missing row to a validation error with notFound.
func loadRoom(ctx context.Context, rooms repository.RoomRepository, roomID, notFound string) (*models.Room, error) {
	if roomID == "" {
		return nil, apperr.Validation(notFound)
	}
	room, err := rooms.GetRoom(ctx, roomID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Validation(notFound)
	}
	if err != nil {
		return nil, storeError("leer habitacion", err)
	}
	return room, nil
}

func transitionError(roomID string, err error) error {
	if errors.Is(err, repository.ErrStateConflict) {
		return apperr.New(apperr.CodeConflict, fmt.Sprintf("Hab %s cambio de estado, intenta de nuevo", roomID), 400, err)
	}
	return storeError("actualizar habitacion", err)
}

// publishTransition never fails the request; broker errors are only logged.
func publishTransition(ctx context.Context, events EventPublisher, logger *zap.Logger, event models.RoomEvent) {
	if err := events.PublishRoomEvent(ctx, event); err != nil {
		logger.Warn("room event publish failed",
			zap.String("room_id", event.RoomID),
			zap.String("to_state", string(event.ToState)),
			zap.Error(err),
		)
	}
}

func roomEvent(roomID string, from, to models.RoomState, userName string, st Stamp) models.RoomEvent {
	return models.RoomEvent{
		RoomID:      roomID,
		FromState:   from,
		ToState:     to,
		UserName:    userName,
		TsMs:        st.Ms,
		BusinessDay: st.BusinessDay,
		ShiftID:     st.ShiftID,
	}
}

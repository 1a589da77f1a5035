package repository

import (
	"context"
	"errors"
	"strconv"

	"launcher-hub/internal/hub"
	"launcher-hub/internal/models"

	"gorm.io/gorm"
)

// StoreRepository implements hub.Store over the platform's relational
// schema. All lookups are read-only; the hub never writes through here.
type StoreRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// GetUserByID resolves a credential subject to a user record. A missing user
// is (nil, nil), not an error; the hub turns that into an auth_error frame.
func (r *StoreRepository) GetUserByID(ctx context.Context, id string) (*hub.User, error) {
	uid, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return nil, nil
	}

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, uint(uid)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &hub.User{
		ID:       strconv.FormatUint(uint64(user.ID), 10),
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// GetRoomIDsForUser lists the chat rooms the user participates in, queried
// once per authentication event by the membership index.
func (r *StoreRepository) GetRoomIDsForUser(ctx context.Context, userID string) ([]string, error) {
	uid, err := strconv.ParseUint(userID, 10, 64)
	if err != nil {
		return nil, nil
	}

	var roomIDs []uint
	if err := r.db.WithContext(ctx).
		Table("chat_room_members").
		Where("user_id = ?", uint(uid)).
		Pluck("chat_room_id", &roomIDs).Error; err != nil {
		return nil, err
	}

	ids := make([]string, len(roomIDs))
	for i, id := range roomIDs {
		ids[i] = strconv.FormatUint(uint64(id), 10)
	}
	return ids, nil
}

// GetParticipantsOfRoom is the authoritative per-broadcast participant
// lookup used by the fan-out engine.
func (r *StoreRepository) GetParticipantsOfRoom(ctx context.Context, roomID string) ([]string, error) {
	rid, err := strconv.ParseUint(roomID, 10, 64)
	if err != nil {
		return nil, nil
	}

	var userIDs []uint
	if err := r.db.WithContext(ctx).
		Table("chat_room_members").
		Where("chat_room_id = ?", uint(rid)).
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}

	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = strconv.FormatUint(uint64(id), 10)
	}
	return ids, nil
}

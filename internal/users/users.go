// Package users manages the identity rows behind the ledger: creation on
// first contact and profile/default-goal updates.
package users

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/runclub/runlog-api/internal/logger"
	"github.com/runclub/runlog-api/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(db *gorm.DB, log *logger.Logger) *Service {
	return &Service{db: db, log: log.With("service", "users")}
}

// Get returns the user row, or ErrUserNotFound.
func (s *Service) Get(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Ensure returns the user row, creating it on first contact.
func (s *Service) Ensure(ctx context.Context, userID, username string) (models.User, error) {
	user := models.User{UserID: userID, Username: username, IsActive: true}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		FirstOrCreate(&user).Error
	if err != nil {
		return models.User{}, fmt.Errorf("ensure user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of the request and returns the
// updated row. The user is created first when absent, since a profile change
// can be the first interaction.
func (s *Service) UpdateProfile(ctx context.Context, userID, username string, req models.UpdateProfileRequest) (models.User, error) {
	user, err := s.Ensure(ctx, userID, username)
	if err != nil {
		return models.User{}, err
	}

	updates := map[string]interface{}{}
	if req.Username != nil {
		updates["username"] = *req.Username
	}
	if req.GoalKm != nil {
		updates["goal_km"] = *req.GoalKm
	}
	if req.ChatType != nil {
		updates["chat_type"] = *req.ChatType
	}
	if len(updates) == 0 {
		return user, nil
	}

	err = s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
	if err != nil {
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}
	s.log.Info("profile updated", "user_id", userID)
	return s.Get(ctx, userID)
}

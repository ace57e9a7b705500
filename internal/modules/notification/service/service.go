package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"anoa.com/coursemarket/internal/entity"
	notifRepo "anoa.com/coursemarket/internal/modules/notification/repository"
	"anoa.com/coursemarket/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const DefaultPageSize = 20

// Channel is the pub/sub channel carrying a user's notifications.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	NotifyEnrollment(ctx context.Context, recipientID uuid.UUID, student *entity.User, course *entity.Course) error
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewNotificationService accepts a nil redis client; notifications are then only persisted.
func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, logger *slog.Logger) NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.redisClient != nil {
		payload, err := json.Marshal(notification)
		if err != nil {
			return fmt.Errorf("failed to encode notification: %w", err)
		}
		if err := s.redisClient.Publish(ctx, Channel(notification.UserID), payload).Err(); err != nil {
			// persisted already; live delivery is best effort
			s.logger.WarnContext(ctx, "failed to publish notification", "notification_id", notification.ID, "error", err)
		}
	}

	return nil
}

func (s *notificationService) NotifyEnrollment(ctx context.Context, recipientID uuid.UUID, student *entity.User, course *entity.Course) error {
	if recipientID == student.ID {
		return nil
	}
	courseID := course.ID
	return s.CreateNotification(ctx, &entity.Notification{
		UserID:   recipientID,
		ActorID:  student.ID,
		CourseID: &courseID,
		Type:     entity.NotificationEnrollmentCreated,
		Message:  fmt.Sprintf("%s enrolled in %s", student.Name, course.Title),
	})
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.MarkAsRead(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("notification not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

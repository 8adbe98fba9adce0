package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"tutorchat/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a record looked up by id does not exist.
var ErrNotFound = errors.New("record not found")

const notificationChannelPrefix = "notifications:"

type Storage interface {
	SaveConversation(ctx context.Context, conv *models.Conversation) error
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	ExpireConversation(ctx context.Context, id string) (bool, error)
	TouchConversation(ctx context.Context, id string, at time.Time) error

	SaveMessage(ctx context.Context, msg *models.Message) error
	GetMessageByID(ctx context.Context, id string) (*models.Message, error)
	GetConversationMessages(ctx context.Context, conversationID string) ([]models.Message, error)

	SaveFlaggedMessage(ctx context.Context, f *models.FlaggedMessage) error
	GetFlaggedMessages(ctx context.Context, status models.FlaggedStatus, limit int) ([]models.FlaggedMessage, error)

	SaveViolation(ctx context.Context, v *models.Violation) error
	GetViolationsForUser(ctx context.Context, userID string) ([]models.Violation, error)
	GetRestrictingViolations(ctx context.Context, userID string) ([]models.Violation, error)

	SaveNotification(ctx context.Context, n *models.Notification) error
	PublishNotification(ctx context.Context, n *models.Notification) error

	SaveProfile(ctx context.Context, p *models.Profile) error
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	SetTelegramChat(ctx context.Context, userID string, chatID *int64) error
	SaveAccount(ctx context.Context, a *models.Account) error
	GetAccount(ctx context.Context, userID string) (*models.Account, error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor. rdb may be nil for tools that only need the database.
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Conversation{},
		&models.Message{},
		&models.FlaggedMessage{},
		&models.Violation{},
		&models.Notification{},
		&models.Profile{},
		&models.Account{},
	)
}

func (s *Service) SaveConversation(ctx context.Context, conv *models.Conversation) error {
	return s.DB.WithContext(ctx).Save(conv).Error
}

// GetConversation returns ErrNotFound when no conversation has the id.
func (s *Service) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation

	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get conversation %s: %v", id, err)
		return nil, err
	}
	return &conv, nil
}

// ExpireConversation moves an active conversation to expired. It reports false when
// the conversation was no longer active, so the transition happens at most once.
func (s *Service) ExpireConversation(ctx context.Context, id string) (bool, error) {
	result := s.DB.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ? AND status = ?", id, models.ConversationActive).
		Update("status", models.ConversationExpired)
	if result.Error != nil {
		log.Printf("ERROR: Failed to expire conversation %s: %v", id, result.Error)
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// TouchConversation moves the last-message watermark. Concurrent writers race; last write wins.
func (s *Service) TouchConversation(ctx context.Context, id string, at time.Time) error {
	return s.DB.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("last_message_at", at).Error
}

func (s *Service) SaveMessage(ctx context.Context, msg *models.Message) error {
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for conversation %s: %v", msg.ConversationID, err)
		return err
	}
	return nil
}

func (s *Service) GetMessageByID(ctx context.Context, id string) (*models.Message, error) {
	var msg models.Message

	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetConversationMessages returns the conversation's messages, oldest first.
func (s *Service) GetConversationMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	var messages []models.Message
	if err := s.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Find(&messages).Error; err != nil {
		log.Printf("ERROR: Failed to get messages for conversation %s: %v", conversationID, err)
		return nil, err
	}
	return messages, nil
}

func (s *Service) SaveFlaggedMessage(ctx context.Context, f *models.FlaggedMessage) error {
	if err := s.DB.WithContext(ctx).Create(f).Error; err != nil {
		log.Printf("ERROR: Failed to save flagged message from %s: %v", f.SenderID, err)
		return err
	}
	return nil
}

// GetFlaggedMessages lists flagged messages, newest first. An empty status lists all.
func (s *Service) GetFlaggedMessages(ctx context.Context, status models.FlaggedStatus, limit int) ([]models.FlaggedMessage, error) {
	q := s.DB.WithContext(ctx).Order("created_at desc")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var flagged []models.FlaggedMessage
	if err := q.Find(&flagged).Error; err != nil {
		return nil, err
	}
	return flagged, nil
}

func (s *Service) SaveViolation(ctx context.Context, v *models.Violation) error {
	if err := s.DB.WithContext(ctx).Create(v).Error; err != nil {
		log.Printf("ERROR: Failed to save violation for user %s: %v", v.UserID, err)
		return err
	}
	return nil
}

func (s *Service) GetViolationsForUser(ctx context.Context, userID string) ([]models.Violation, error) {
	var violations []models.Violation
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&violations).Error; err != nil {
		return nil, err
	}
	return violations, nil
}

// GetRestrictingViolations returns mute and ban rows for the user. Expiry is left to
// the caller; expired rows are kept in storage.
func (s *Service) GetRestrictingViolations(ctx context.Context, userID string) ([]models.Violation, error) {
	actions := []string{
		string(models.ActionMute24h),
		string(models.ActionMute7d),
		string(models.ActionBan),
	}

	var violations []models.Violation
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND action IN ?", userID, actions).
		Order("created_at asc").
		Find(&violations).Error; err != nil {
		log.Printf("ERROR: Failed to load restrictions for user %s: %v", userID, err)
		return nil, err
	}
	return violations, nil
}

func (s *Service) SaveNotification(ctx context.Context, n *models.Notification) error {
	return s.DB.WithContext(ctx).Create(n).Error
}

// PublishNotification публікує сповіщення в Redis Pub/Sub для онлайн-клієнтів
func (s *Service) PublishNotification(ctx context.Context, n *models.Notification) error {
	if s.Redis == nil {
		return errors.New("redis is not configured")
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.Redis.Publish(ctx, NotificationChannel(n.RecipientID), string(payload)).Err()
}

// SubscribeNotifications listens on every recipient's notification channel.
func (s *Service) SubscribeNotifications(ctx context.Context) *redis.PubSub {
	return s.Redis.PSubscribe(ctx, notificationChannelPrefix+"*")
}

// NotificationChannel is the pub/sub channel of one recipient.
func NotificationChannel(userID string) string {
	return notificationChannelPrefix + userID
}

func (s *Service) SaveProfile(ctx context.Context, p *models.Profile) error {
	return s.DB.WithContext(ctx).Save(p).Error
}

// GetProfile returns nil without an error when the user has no profile.
func (s *Service) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetTelegramChat links (or with nil unlinks) the chat that receives the user's push
// notifications, creating the profile row when the user has none yet.
func (s *Service) SetTelegramChat(ctx context.Context, userID string, chatID *int64) error {
	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if p == nil {
		p = &models.Profile{UserID: userID}
	}
	p.TelegramChatID = chatID
	return s.DB.WithContext(ctx).Save(p).Error
}

func (s *Service) SaveAccount(ctx context.Context, a *models.Account) error {
	return s.DB.WithContext(ctx).Save(a).Error
}

// GetAccount returns nil without an error when the user has no account row.
func (s *Service) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	var a models.Account
	err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

package notify_test

import (
	"context"

	"tutorchat/backend/internal/models"
	"tutorchat/backend/internal/notify"

	"github.com/stretchr/testify/mock"
)

type MockInApp struct{ mock.Mock }

func (m *MockInApp) Deliver(ctx context.Context, c notify.Contract) error {
	return m.Called(ctx, c).Error(0)
}

type MockEmail struct{ mock.Mock }

func (m *MockEmail) Email(ctx context.Context, c notify.Contract) (bool, error) {
	args := m.Called(ctx, c)
	return args.Bool(0), args.Error(1)
}

type MockPush struct{ mock.Mock }

func (m *MockPush) Push(ctx context.Context, c notify.Contract) notify.PushOutcome {
	return m.Called(ctx, c).Get(0).(notify.PushOutcome)
}

type MockDirectory struct{ mock.Mock }

func (m *MockDirectory) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockDirectory) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

type MockNotificationStore struct{ mock.Mock }

func (m *MockNotificationStore) SaveNotification(ctx context.Context, n *models.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationStore) PublishNotification(ctx context.Context, n *models.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type MockSender struct{ mock.Mock }

func (m *MockSender) Send(ctx context.Context, c notify.Contract) notify.Outcome {
	return m.Called(ctx, c).Get(0).(notify.Outcome)
}

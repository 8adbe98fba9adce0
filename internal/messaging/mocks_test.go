package messaging_test

import (
	"context"
	"sync"
	"time"

	"tutorchat/backend/internal/analysis"
	"tutorchat/backend/internal/ledger"
	"tutorchat/backend/internal/models"
	"tutorchat/backend/internal/notify"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockStore) ExpireConversation(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) SaveFlaggedMessage(ctx context.Context, f *models.FlaggedMessage) error {
	args := m.Called(ctx, f)
	if f.ID == "" {
		f.ID = "flagged-1"
	}
	return args.Error(0)
}

func (m *MockStore) SaveMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	if msg.ID == "" {
		msg.ID = "msg-1"
	}
	return args.Error(0)
}

func (m *MockStore) GetMessageByID(ctx context.Context, id string) (*models.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockStore) TouchConversation(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) IsSenderBlocked(ctx context.Context, userID string, now time.Time) (ledger.Block, error) {
	args := m.Called(ctx, userID, now)
	return args.Get(0).(ledger.Block), args.Error(1)
}

func (m *MockLedger) RecordViolation(ctx context.Context, e ledger.Entry) (*models.Violation, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Violation), args.Error(1)
}

// stubClassifier returns a fixed result.
type stubClassifier struct {
	result analysis.Result
}

func (s stubClassifier) Classify(string, string, string) analysis.Result {
	return s.result
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.MessageEvent
}

func (n *recordingNotifier) Enqueue(ev notify.MessageEvent) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return true
}

type MockIdempotency struct {
	mock.Mock
}

func (m *MockIdempotency) Reserve(ctx context.Context, key string) (bool, string, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *MockIdempotency) Complete(ctx context.Context, key, messageID string) error {
	return m.Called(ctx, key, messageID).Error(0)
}

func (m *MockIdempotency) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

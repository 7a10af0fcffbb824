package game

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// --- NetworkSession ---

type MockNetworkSession struct {
	mock.Mock
}

func (m *MockNetworkSession) Close(errCode string) {
	m.Called(errCode)
}

func (m *MockNetworkSession) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockNetworkSession) Read() ([]byte, error) {
	args := m.Called()
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockNetworkSession) Ping() error {
	args := m.Called()
	return args.Error(0)
}

// --- Recorder ---

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) GameCreated(ctx context.Context, code, name string) error {
	args := m.Called(ctx, code, name)
	return args.Error(0)
}

func (m *MockRecorder) PlayerJoined(ctx context.Context, code, playerID, name, color string) error {
	args := m.Called(ctx, code, playerID, name, color)
	return args.Error(0)
}

func (m *MockRecorder) WordClaimed(ctx context.Context, code, wordID string, category string, points int, playerID string) error {
	args := m.Called(ctx, code, wordID, category, points, playerID)
	return args.Error(0)
}

// --- PeriodicTickerChannelCreator ---

type MockPeriodicTickerChannelCreator struct {
	mock.Mock
}

func (m *MockPeriodicTickerChannelCreator) Create(duration time.Duration) <-chan time.Time {
	args := m.Called(duration)
	return args.Get(0).(chan time.Time)
}

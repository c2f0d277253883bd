// Package mocks 测试用的 Messenger 替身
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Xushengqwer/confession_service/messaging"
)

// MockMessenger 基于 testify/mock 的 Messenger
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) Send(ctx context.Context, msg messaging.OutgoingMessage) (messaging.MessageRef, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(messaging.MessageRef), args.Error(1)
}

func (m *MockMessenger) Edit(ctx context.Context, ref messaging.MessageRef, text string, buttons [][]messaging.Button) error {
	args := m.Called(ctx, ref, text, buttons)
	return args.Error(0)
}

func (m *MockMessenger) Delete(ctx context.Context, ref messaging.MessageRef) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

package txmanager

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTransactionManager is a mock implementation of the TransactionManager interface
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

func (m *MockTransactionManager) BeginTransaction(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *MockTransactionManager) CommitTransaction(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTransactionManager) RollbackTransaction(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// PassthroughTransactionManager executes transaction functions directly,
// without a database. Useful in tests that exercise transactional code paths.
type PassthroughTransactionManager struct{}

func (m *PassthroughTransactionManager) WithTransaction(
	ctx context.Context,
	fn func(ctx context.Context) error,
) error {
	return fn(ctx)
}

func (m *PassthroughTransactionManager) BeginTransaction(ctx context.Context) (context.Context, error) {
	return ctx, nil
}

func (m *PassthroughTransactionManager) CommitTransaction(ctx context.Context) error {
	return nil
}

func (m *PassthroughTransactionManager) RollbackTransaction(ctx context.Context) error {
	return nil
}

package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGitClient is a testify mock for the GitClient type.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	mockArgs := []any{ctx, repoPath}
	for _, arg := range args {
		mockArgs = append(mockArgs, arg)
	}
	ret := m.Called(mockArgs...)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// GetHistoryLog implements the GitClient interface.
func (m *MockGitClient) GetHistoryLog(ctx context.Context, repoPath string) ([]byte, error) {
	ret := m.Called(ctx, repoPath)
	output, _ := ret.Get(0).([]byte)
	return output, ret.Error(1)
}

// MockCloner is a testify mock for the Cloner type.
type MockCloner struct {
	mock.Mock
}

var _ Cloner = &MockCloner{} // Compile-time check

// Clone implements the Cloner interface.
func (m *MockCloner) Clone(ctx context.Context, url, dest string) error {
	return m.Called(ctx, url, dest).Error(0)
}

// MockQuotaChecker is a testify mock for the QuotaChecker type.
type MockQuotaChecker struct {
	mock.Mock
}

var _ QuotaChecker = &MockQuotaChecker{} // Compile-time check

// Check implements the QuotaChecker interface.
func (m *MockQuotaChecker) Check(ctx context.Context) (bool, float64, error) {
	ret := m.Called(ctx)
	percent, _ := ret.Get(1).(float64)
	return ret.Bool(0), percent, ret.Error(2)
}

// MockPublisher is a testify mock for the Publisher type.
type MockPublisher struct {
	mock.Mock
}

var _ Publisher = &MockPublisher{} // Compile-time check

// Publish implements the Publisher interface.
func (m *MockPublisher) Publish(ctx context.Context, key, localPath string) error {
	return m.Called(ctx, key, localPath).Error(0)
}

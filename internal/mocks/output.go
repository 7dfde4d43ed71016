package mocks

import (
	"github.com/brettbedarf/webterm/shell"
	"github.com/stretchr/testify/mock"
)

// MockOutput implements shell.Output for testing across packages
type MockOutput struct {
	mock.Mock
}

func (m *MockOutput) Print(s string) {
	m.Called(s)
}

func (m *MockOutput) Println(s string) {
	m.Called(s)
}

func (m *MockOutput) Clear() {
	m.Called()
}

var _ shell.Output = (*MockOutput)(nil)

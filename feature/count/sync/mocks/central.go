package mocks

import (
	"context"

	countsync "coop-inventory/feature/count/sync"

	"github.com/stretchr/testify/mock"
)

// Central is a mock implementation of countsync.Central
type Central struct {
	mock.Mock
}

func (m *Central) Available() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *Central) Connect(ctx context.Context, serviceUUID string) (countsync.Peripheral, error) {
	args := m.Called(ctx, serviceUUID)
	if p, ok := args.Get(0).(countsync.Peripheral); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// Peripheral is a mock implementation of countsync.Peripheral
type Peripheral struct {
	mock.Mock
}

func (m *Peripheral) WriteCharacteristic(ctx context.Context, charUUID string, payload []byte) error {
	args := m.Called(ctx, charUUID, payload)
	return args.Error(0)
}

func (m *Peripheral) ReadCharacteristic(ctx context.Context, charUUID string) ([]byte, error) {
	args := m.Called(ctx, charUUID)
	if b, ok := args.Get(0).([]byte); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Peripheral) Disconnect() error {
	args := m.Called()
	return args.Error(0)
}

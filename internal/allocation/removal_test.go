package allocation_test

import (
	"context"
	"testing"

	"cowork-allocator/internal/allocation"
	"cowork-allocator/internal/client"
	"cowork-allocator/internal/domain"
	"cowork-allocator/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRemovalService(api *MockBookingAPI, cat *MockCatalog, sink *MockEvents) *allocation.RemovalService {
	if sink == nil {
		return allocation.NewRemovalService(api, cat, nil, zap.NewNop())
	}
	return allocation.NewRemovalService(api, cat, sink, zap.NewNop())
}

func TestRemoval_RequestConfirm_Success(t *testing.T) {
	api := new(MockBookingAPI)
	cat := new(MockCatalog)
	sink := new(MockEvents)
	svc := newRemovalService(api, cat, sink)

	api.On("DeleteAllocation", mock.Anything, int64(42)).Return(nil).Once()
	api.On("ListAllocations", mock.Anything, int64(1)).
		Return([]domain.CustomerAllocations{{CustomerID: 9}}, nil).Once()
	cat.On("Fetch", mock.Anything, int64(1), int64(0)).Return(testSnapshot(), nil).Once()
	sink.On("AllocationRemoved", mock.Anything, mock.MatchedBy(func(ev events.RemovedEvent) bool {
		return ev.AllocationID == 42 && ev.BranchID == 1
	})).Return(nil).Once()

	require.True(t, svc.Request(42))
	assert.Equal(t, allocation.RemovalConfirmPending, svc.State())

	outcome := svc.Confirm(context.Background(), 42, 1)

	require.Equal(t, allocation.RemovalRemoved, outcome.Status)
	require.Len(t, outcome.Allocations, 1)
	assert.NotNil(t, outcome.Catalog)
	require.NotNil(t, outcome.Notification)
	assert.Equal(t, allocation.SeveritySuccess, outcome.Notification.Severity)
	assert.Equal(t, allocation.RemovalIdle, svc.State())
	api.AssertExpectations(t)
	sink.AssertExpectations(t)
}

func TestRemoval_ConfirmWithoutRequest_Ignored(t *testing.T) {
	api := new(MockBookingAPI)
	cat := new(MockCatalog)
	svc := newRemovalService(api, cat, nil)

	outcome := svc.Confirm(context.Background(), 42, 1)

	assert.Equal(t, allocation.RemovalIgnored, outcome.Status)
	api.AssertNotCalled(t, "DeleteAllocation", mock.Anything, mock.Anything)
}

func TestRemoval_ConfirmDifferentID_Ignored(t *testing.T) {
	api := new(MockBookingAPI)
	cat := new(MockCatalog)
	svc := newRemovalService(api, cat, nil)

	require.True(t, svc.Request(42))
	outcome := svc.Confirm(context.Background(), 99, 1)

	assert.Equal(t, allocation.RemovalIgnored, outcome.Status)
	api.AssertNotCalled(t, "DeleteAllocation", mock.Anything, mock.Anything)
	// the original staged removal is still pending
	assert.Equal(t, allocation.RemovalConfirmPending, svc.State())
}

func TestRemoval_SecondRequestWhilePending_Rejected(t *testing.T) {
	api := new(MockBookingAPI)
	cat := new(MockCatalog)
	svc := newRemovalService(api, cat, nil)

	require.True(t, svc.Request(42))
	assert.False(t, svc.Request(43))
}

func TestRemoval_Cancel_NoSideEffects(t *testing.T) {
	api := new(MockBookingAPI)
	cat := new(MockCatalog)
	svc := newRemovalService(api, cat, nil)

	require.True(t, svc.Request(42))
	svc.Cancel()

	assert.Equal(t, allocation.RemovalIdle, svc.State())
	api.AssertNotCalled(t, "DeleteAllocation", mock.Anything, mock.Anything)

	// after cancel a new removal can be staged
	assert.True(t, svc.Request(43))
}

func TestRemoval_NotFound_FailsWithNotification(t *testing.T) {
	api := new(MockBookingAPI)
	cat := new(MockCatalog)
	svc := newRemovalService(api, cat, nil)

	api.On("DeleteAllocation", mock.Anything, int64(42)).
		Return(&client.APIError{StatusCode: 404, Message: "allocation not found"}).Once()

	require.True(t, svc.Request(42))
	outcome := svc.Confirm(context.Background(), 42, 1)

	require.Equal(t, allocation.RemovalFailed, outcome.Status)
	require.NotNil(t, outcome.Notification)
	assert.Equal(t, "allocation no longer exists", outcome.Notification.Message)
	assert.Empty(t, outcome.Allocations, "allocation list must stay unchanged on failure")
	assert.Equal(t, allocation.RemovalIdle, svc.State())
	api.AssertNotCalled(t, "ListAllocations", mock.Anything, mock.Anything)
}

func TestRemoval_NetworkFailure(t *testing.T) {
	api := new(MockBookingAPI)
	cat := new(MockCatalog)
	svc := newRemovalService(api, cat, nil)

	api.On("DeleteAllocation", mock.Anything, int64(42)).
		Return(&client.NetworkError{Err: context.DeadlineExceeded}).Once()

	require.True(t, svc.Request(42))
	outcome := svc.Confirm(context.Background(), 42, 1)

	require.Equal(t, allocation.RemovalFailed, outcome.Status)
	assert.Equal(t, "booking server unreachable, please retry", outcome.Notification.Message)
}

func TestRemoval_RefreshFailure_DoesNotFailRemoval(t *testing.T) {
	api := new(MockBookingAPI)
	cat := new(MockCatalog)
	svc := newRemovalService(api, cat, nil)

	api.On("DeleteAllocation", mock.Anything, int64(42)).Return(nil).Once()
	api.On("ListAllocations", mock.Anything, int64(1)).
		Return(nil, &client.NetworkError{Err: context.DeadlineExceeded}).Once()
	cat.On("Fetch", mock.Anything, int64(1), int64(0)).
		Return(nil, &client.NetworkError{Err: context.DeadlineExceeded}).Once()

	require.True(t, svc.Request(42))
	outcome := svc.Confirm(context.Background(), 42, 1)

	require.Equal(t, allocation.RemovalRemoved, outcome.Status)
	assert.Empty(t, outcome.Allocations)
	assert.Nil(t, outcome.Catalog)
}

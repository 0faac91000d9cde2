package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cowork-allocator/internal/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *client.Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return client.New(srv.URL, 2*time.Second, zap.NewNop())
}

func TestFetchAvailableRooms_ParsesResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/rooms/available", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("branch_id"))
		assert.Equal(t, "42", r.URL.Query().Get("customer_id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": [
				{"id": 7, "branch_id": 1, "room_name": "Open Desk A", "room_type": "seater",
				 "seater_capacity": 4, "total_quantity": 4,
				 "monthly_cost": "1000", "hourly_cost": "25", "available_quantity": 4}
			]
		}`))
	})

	rooms, err := c.FetchAvailableRooms(context.Background(), 1, 42)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, int64(7), rooms[0].ID)
	assert.Equal(t, 4, rooms[0].AvailableQuantity)
	assert.Equal(t, "1000", rooms[0].MonthlyCost.String())
}

func TestFetchAvailableRooms_OmitsZeroCustomerID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["customer_id"]
		assert.False(t, present)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": []}`))
	})

	_, err := c.FetchAvailableRooms(context.Background(), 1, 0)
	require.NoError(t, err)
}

func TestCreateAllocations_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/allocations", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(42), body["customer_id"])
		assert.Equal(t, "2026-09-01", body["start_date"])
		assert.Nil(t, body["end_date"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"allocation_ids": [101, 102],
				"customers": [{"customer_id": 42, "customer_name": "Acme", "allocations": []}]
			}
		}`))
	})

	resp, err := c.CreateAllocations(context.Background(), client.CreateAllocationsRequest{
		CustomerID:  42,
		BranchID:    1,
		StartDate:   "2026-09-01",
		BookingType: "monthly",
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{101, 102}, resp.AllocationIDs)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, "Acme", resp.Customers[0].CustomerName)
}

func TestCreateAllocations_CapacityConflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success": false, "message": "only 2 available for room 7"}`))
	})

	_, err := c.CreateAllocations(context.Background(), client.CreateAllocationsRequest{CustomerID: 42})
	require.Error(t, err)
	assert.True(t, client.IsCapacityConflict(err))

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "only 2 available for room 7", apiErr.Message)
}

func TestDeleteAllocation_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/allocations/42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success": false, "message": "allocation not found"}`))
	})

	err := c.DeleteAllocation(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))
	assert.False(t, client.IsCapacityConflict(err))
}

func TestDeleteAllocation_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true}`))
	})

	assert.NoError(t, c.DeleteAllocation(context.Background(), 42))
}

func TestClient_NetworkError(t *testing.T) {
	// a server that is immediately closed leaves nothing listening
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	c := client.New(srv.URL, 500*time.Millisecond, zap.NewNop())

	_, err := c.FetchAvailableRooms(context.Background(), 1, 0)
	require.Error(t, err)
	assert.True(t, client.IsNetwork(err))
	assert.False(t, client.IsNotFound(err))
}

func TestListAllocations_EnvelopeFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": false, "message": "branch not found"}`))
	})

	_, err := c.ListAllocations(context.Background(), 1)
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "branch not found", apiErr.Message)
}

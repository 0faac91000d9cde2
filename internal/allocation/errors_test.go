package allocation_test

import (
	"encoding/json"
	"testing"

	"cowork-allocator/internal/allocation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors_MarshalJSON_DeterministicOrder(t *testing.T) {
	d := validDraft(t)
	d.StartDate = nil
	require.NoError(t, d.UpdateQuantity(7, 5))

	errs := allocation.Validate(d, testSnapshot(), testNow)
	require.Len(t, errs, 2)

	data, err := json.Marshal(errs)
	require.NoError(t, err)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 2)

	// sorted by field name, then room id
	assert.Equal(t, "quantity_booked", entries[0]["field"])
	assert.Equal(t, float64(7), entries[0]["room_id"])
	assert.Equal(t, "capacity_exceeded", entries[0]["kind"])
	assert.Equal(t, "start_date", entries[1]["field"])
	assert.Nil(t, entries[1]["room_id"])
}

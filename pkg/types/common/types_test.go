package common_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brailleforge/brailleforge/pkg/types/common"
)

func TestID_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, common.NewID().Validate())
	assert.Error(t, common.ID("").Validate())
	assert.Error(t, common.ID("not-a-uuid").Validate())
}

func TestGenerateID_Prefix(t *testing.T) {
	t.Parallel()

	id := common.GenerateID("plate")
	assert.Contains(t, id, "plate-")
	assert.NotEqual(t, id, common.GenerateID("plate"))
}

func TestTimestamp_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	orig := common.Timestamp(time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC))
	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var back common.Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, time.Time(orig).Equal(time.Time(back)))
}

func TestNewErrorResponse(t *testing.T) {
	t.Parallel()

	resp := common.NewErrorResponse("GEO_001", "bad parameter")
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "GEO_001", resp.Error.Code)
	assert.Equal(t, "bad parameter", resp.Error.Message)
}

func TestNewSuccessResponse(t *testing.T) {
	t.Parallel()

	resp := common.NewSuccessResponse(map[string]int{"triangles": 42})
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.Equal(t, 42, resp.Data["triangles"])
}

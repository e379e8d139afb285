package activationrpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestFormatTime_ConvertsToUTC(t *testing.T) {
	t.Parallel()

	tokyo := time.FixedZone("JST", 9*60*60)
	ts := time.Date(2024, 7, 11, 9, 5, 3, 0, tokyo)

	assert.Equal(t, "2024/07/11 00:05:03", FormatTime(ts))
}

func TestActivateResponse_StructFields(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 7, 11, 3, 0, 0, 123_000_000, time.UTC)
	s, err := (&ActivateResponse{
		Status:         409,
		SerialNo:       "SN001",
		MachineID:      "MID3",
		LastUpdateTime: at,
		Description:    "full",
	}).ToStruct()
	require.NoError(t, err)

	fields := s.GetFields()
	assert.Equal(t, float64(409), fields["status"].GetNumberValue())
	assert.Equal(t, "2024-07-11T03:00:00.123Z", fields["lastUpdateTime"].GetStringValue())

	back, err := ActivateResponseFromStruct(s)
	require.NoError(t, err)
	assert.Equal(t, 409, back.Status)
	assert.True(t, back.LastUpdateTime.Equal(at))
}

func TestActivateResponseFromStruct_BadTime(t *testing.T) {
	t.Parallel()

	s, err := structpb.NewStruct(map[string]any{"status": 201, "lastUpdateTime": "yesterday"})
	require.NoError(t, err)

	_, err = ActivateResponseFromStruct(s)
	assert.ErrorContains(t, err, "decode lastUpdateTime")
}

func TestListBindingsResponseFromStruct_Empty(t *testing.T) {
	t.Parallel()

	s, err := (&ListBindingsResponse{}).ToStruct()
	require.NoError(t, err)

	out, err := ListBindingsResponseFromStruct(s)
	require.NoError(t, err)
	assert.Empty(t, out.Bindings)
}

func TestActivateRequestFromStruct_MissingFields(t *testing.T) {
	t.Parallel()

	s, err := structpb.NewStruct(map[string]any{"machineId": "MID1"})
	require.NoError(t, err)

	req := ActivateRequestFromStruct(s)
	assert.Empty(t, req.SerialNo)
	assert.Equal(t, "MID1", req.MachineID)
}

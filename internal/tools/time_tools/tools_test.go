package time_tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ykykj/assistant/internal/tools/tooltest"
)

func TestGetCurrentTime(t *testing.T) {
	now := time.Date(2025, 12, 29, 1, 30, 0, 0, time.UTC)
	sc := tooltest.NewServerContext(t, nil, func() time.Time { return now })
	s := tooltest.NewMCPServer()
	require.NoError(t, RegisterTimeTools(s, sc))

	text, isErr := tooltest.Call(t, s, "getCurrentTime", nil)
	require.False(t, isErr, text)
	assert.Equal(t, "Current Time: 2025-12-29 09:30:00\nDay: Monday\nWeek: 1\nTimezone: Asia/Shanghai", text)

	text, isErr = tooltest.Call(t, s, "getCurrentTime", map[string]any{"timezone": "America/New_York"})
	require.False(t, isErr, text)
	assert.Equal(t, "Current Time: 2025-12-28 20:30:00\nDay: Sunday\nWeek: 52\nTimezone: America/New_York", text)

	text, isErr = tooltest.Call(t, s, "getCurrentTime", map[string]any{"timezone": "Moon/Base"})
	assert.True(t, isErr)
	assert.Equal(t, `Error: unknown time zone "Moon/Base"`, text)
}

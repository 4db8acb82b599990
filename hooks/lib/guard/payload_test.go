package guard_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-dawn/token-guard/hooks/lib/guard"
)

func TestParseEvent_Task(t *testing.T) {
	body := `{"tool_name":"Task","session_id":"abc12345","tool_input":{"subagent_type":"Explore","description":"explore the repo","prompt":"START: ~/repo","team_name":"","model":"opus","resume":true}}`

	ev, err := guard.ParseEvent(strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, guard.EventTask, ev.Kind)
	assert.Equal(t, "abc12345", ev.SessionID)
	assert.Equal(t, "Explore", ev.SubagentType)
	assert.Equal(t, "explore the repo", ev.Description)
	assert.Equal(t, "opus", ev.Model)
	assert.True(t, ev.Resume)
}

func TestParseEvent_Read(t *testing.T) {
	body := `{"tool_name":"Read","session_id":"abc12345","tool_input":{"file_path":"/tmp/test.py"}}`

	ev, err := guard.ParseEvent(strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, guard.EventRead, ev.Kind)
	assert.Equal(t, "/tmp/test.py", ev.FilePath)
}

func TestParseEvent_OtherToolNameIsEventOther(t *testing.T) {
	body := `{"tool_name":"Bash","session_id":"abc12345","tool_input":{"command":"ls"}}`

	ev, err := guard.ParseEvent(strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, guard.EventOther, ev.Kind)
}

func TestParseEvent_MalformedPayloadReturnsError(t *testing.T) {
	_, err := guard.ParseEvent(strings.NewReader("not json"))
	assert.Error(t, err)
}

func TestParseEvent_EmptyPayloadReturnsError(t *testing.T) {
	_, err := guard.ParseEvent(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseEvent_MissingToolInputDefaultsToEmptyFields(t *testing.T) {
	body := `{"tool_name":"Task","session_id":"abc12345"}`

	ev, err := guard.ParseEvent(strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, guard.EventTask, ev.Kind)
	assert.Empty(t, ev.SubagentType)
	assert.False(t, ev.Resume)
}

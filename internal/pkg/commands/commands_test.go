package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPurgeCommand(t *testing.T) {
	cmd := NewCmdPurge("7f3c")
	assert.Equal(t, CmdIdPurge, cmd.Id)
	assert.Equal(t, "7f3c", cmd.JobId())

	assert.Empty(t, CmdTerminate.JobId())
	assert.Empty(t, Command{Id: CmdIdPurge}.JobId())
}

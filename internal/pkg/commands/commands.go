package commands

const (
	CmdIdTerminate = 1
	CmdIdPurge     = 2
)

type Command struct {
	Id        int
	Arguments []string
}

var (
	CmdTerminate = Command{Id: CmdIdTerminate}
)

// NewCmdPurge requests a purge run. The job id travels as the only argument.
func NewCmdPurge(jobId string) Command {
	return Command{Id: CmdIdPurge, Arguments: []string{jobId}}
}

// JobId returns the job id carried by a purge command.
func (c Command) JobId() string {
	if c.Id != CmdIdPurge || len(c.Arguments) == 0 {
		return ""
	}
	return c.Arguments[0]
}

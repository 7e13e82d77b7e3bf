package feedback

// ExitCode is the process exit status of a failed command.
type ExitCode int

const (
	Success ExitCode = iota
	ErrGeneric
	_ // reserved
	ErrNetwork
	ErrBadArgument
	ErrServiceUnavailable
)

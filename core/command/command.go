// Package command defines all commands that can be sent to the application.
// Commands represent user intentions and are processed by the application layer.
package command

// Command is the base interface for all commands.
// Commands are sent from the presentation layer to the application layer.
type Command interface {
	// CommandName returns the name of the command for logging/debugging
	CommandName() string
}

// RequestCommand is a command that carries a processing-request identity.
// The request ID ties result events back to the command that caused them.
type RequestCommand interface {
	Command
	// RequestID returns the processing request ID
	RequestID() string
}

// baseRequestCommand provides common implementation for request commands.
type baseRequestCommand struct {
	requestID string
}

func (c *baseRequestCommand) RequestID() string {
	return c.requestID
}

package domain

type Command interface {
	Connection() ConnectionID
}

type JoinCommand struct {
	ConnectionID ConnectionID
	Identity     Identity
}

func (c JoinCommand) Connection() ConnectionID { return c.ConnectionID }

type SendMessageCommand struct {
	ConnectionID ConnectionID
	To           string
	Body         string
}

func (c SendMessageCommand) Connection() ConnectionID { return c.ConnectionID }

type TypingCommand struct {
	ConnectionID ConnectionID
}

func (c TypingCommand) Connection() ConnectionID { return c.ConnectionID }

type StopTypingCommand struct {
	ConnectionID ConnectionID
}

func (c StopTypingCommand) Connection() ConnectionID { return c.ConnectionID }

type DisconnectCommand struct {
	ConnectionID ConnectionID
}

func (c DisconnectCommand) Connection() ConnectionID { return c.ConnectionID }

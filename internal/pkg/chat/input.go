package chat

import (
	"strconv"
	"strings"
)

// Action is a command typed by a chat user.
type Action string

// User actions.
const (
	ActionMsg  Action = "msg"
	ActionList Action = "list"
	ActionHelp Action = "help"
	ActionQuit Action = "quit"
)

// Input is a parsed line of user input.
type Input struct {
	Action     Action
	Recipients []string
	Text       string
}

// HelpText lists the commands a user can type.
const HelpText = "List of Commands:\n" +
	"msg <number_of_users> <username1> <username2> ... <message>\n" +
	"list\n" +
	"help\n" +
	"quit\n"

// ParseInput parses one line typed by the user.
//
//	msg <n> <user1> ... <usern> <text...>
//	list
//	help
//	quit
func ParseInput(line string) (Input, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Input{}, ErrIncorrectInput
	}
	switch Action(fields[0]) {
	case ActionList, ActionHelp, ActionQuit:
		return Input{Action: Action(fields[0])}, nil
	case ActionMsg:
		// at least one recipient and one word of text
		if len(fields) < 3 {
			return Input{}, ErrIncorrectInput
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 || len(fields) < n+3 {
			return Input{}, ErrIncorrectInput
		}
		return Input{
			Action:     ActionMsg,
			Recipients: fields[2 : 2+n],
			Text:       strings.Join(fields[2+n:], " "),
		}, nil
	}
	return Input{}, ErrIncorrectInput
}

// Message converts an input line into the message sent to the server on behalf of username.
// Help has no message.
func (in Input) Message(username string) (Message, bool) {
	switch in.Action {
	case ActionMsg:
		return NewSendMessage(in.Recipients, in.Text), true
	case ActionList:
		return NewRequestUsersList(), true
	case ActionQuit:
		return NewDisconnect(username), true
	}
	return Message{}, false
}

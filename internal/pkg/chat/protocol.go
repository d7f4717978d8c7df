// Package chat implements the application messages exchanged by chat clients and the server.
//
// A message is a whitespace separated string
//
//	<command> <length> [<body>]
//
// where length is 0 for commands without a body and the length of body otherwise.
package chat

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Command names an application message.
type Command string

// Protocol commands.
const (
	Join                Command = "join"
	Disconnect          Command = "disconnect"
	RequestUsersList    Command = "request_users_list"
	SendMessage         Command = "send_message"
	ResponseUsersList   Command = "response_users_list"
	ForwardMessage      Command = "forward_message"
	UsernameUnavailable Command = "err_username_unavailable"
	ServerFull          Command = "err_server_full"
	UnknownMessage      Command = "err_unknown_message"
)

// Known reports whether c is part of the protocol.
func (c Command) Known() bool {
	switch c {
	case Join, Disconnect, RequestUsersList, SendMessage, ResponseUsersList,
		ForwardMessage, UsernameUnavailable, ServerFull, UnknownMessage:
		return true
	}
	return false
}

// IsError reports whether c is one of the server's terminal error responses.
func (c Command) IsError() bool {
	return c == UsernameUnavailable || c == ServerFull || c == UnknownMessage
}

// Message is a decoded application message. Which fields are set depends on Command.
type Message struct {
	Command Command
	// Length is the declared length field.
	Length int

	// Username is set for join and disconnect.
	Username string
	// Recipients is set for send_message.
	Recipients []string
	// Sender is set for forward_message.
	Sender string
	// Text is the chat text of send_message and forward_message.
	Text string
	// Users is set for response_users_list.
	Users []string
}

// NewJoin builds a join message.
func NewJoin(username string) Message {
	return Message{Command: Join, Username: username}
}

// NewDisconnect builds a disconnect message.
func NewDisconnect(username string) Message {
	return Message{Command: Disconnect, Username: username}
}

// NewRequestUsersList builds a request_users_list message.
func NewRequestUsersList() Message {
	return Message{Command: RequestUsersList}
}

// NewSendMessage builds a send_message message.
func NewSendMessage(recipients []string, text string) Message {
	return Message{Command: SendMessage, Recipients: recipients, Text: text}
}

// NewResponseUsersList builds a response_users_list message.
func NewResponseUsersList(users []string) Message {
	return Message{Command: ResponseUsersList, Users: users}
}

// NewForwardMessage builds a forward_message message.
func NewForwardMessage(sender, text string) Message {
	return Message{Command: ForwardMessage, Sender: sender, Text: text}
}

// NewError builds one of the body-less error responses.
func NewError(c Command) Message {
	return Message{Command: c}
}

// body renders the part of the message following the length field.
func (m Message) body() string {
	switch m.Command {
	case Join, Disconnect:
		return m.Username
	case SendMessage:
		return joinFields(strconv.Itoa(len(m.Recipients)), strings.Join(m.Recipients, " "), m.Text)
	case ResponseUsersList:
		return joinFields(strconv.Itoa(len(m.Users)), strings.Join(m.Users, " "))
	case ForwardMessage:
		return joinFields("1", m.Sender, m.Text)
	}
	return ""
}

// String encodes the message.
func (m Message) String() string {
	body := m.body()
	if body == "" {
		return string(m.Command) + " 0"
	}
	return string(m.Command) + " " + strconv.Itoa(len(body)) + " " + body
}

// Encode encodes the message for the transport.
func (m Message) Encode() []byte {
	return []byte(m.String())
}

// Parse decodes a message. An unrecognised command yields ErrUnknownCommand together
// with a Message carrying that command; a known command with missing fields yields
// ErrMalformedMessage.
func Parse(raw string) (Message, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Message{}, errors.Wrap(ErrMalformedMessage, "empty message")
	}
	msg := Message{Command: Command(fields[0])}
	if !msg.Command.Known() {
		return msg, errors.Wrapf(ErrUnknownCommand, "command %q", fields[0])
	}
	if len(fields) < 2 {
		return msg, errors.Wrapf(ErrMalformedMessage, "%s: missing length", msg.Command)
	}
	length, err := strconv.Atoi(fields[1])
	if err != nil || length < 0 {
		return msg, errors.Wrapf(ErrMalformedMessage, "%s: invalid length %q", msg.Command, fields[1])
	}
	msg.Length = length
	args := fields[2:]

	switch msg.Command {
	case Join, Disconnect:
		if len(args) < 1 {
			return msg, errors.Wrapf(ErrMalformedMessage, "%s: missing username", msg.Command)
		}
		msg.Username = args[0]
	case SendMessage:
		n, rest, err := counted(args)
		if err != nil || n < 1 {
			return msg, errors.Wrapf(ErrMalformedMessage, "%s: invalid recipients", msg.Command)
		}
		msg.Recipients = rest[:n]
		msg.Text = strings.Join(rest[n:], " ")
	case ResponseUsersList:
		n, rest, err := counted(args)
		if err != nil {
			return msg, errors.Wrapf(ErrMalformedMessage, "%s: invalid users", msg.Command)
		}
		msg.Users = rest[:n]
	case ForwardMessage:
		n, rest, err := counted(args)
		if err != nil || n != 1 {
			return msg, errors.Wrapf(ErrMalformedMessage, "%s: invalid sender", msg.Command)
		}
		msg.Sender = rest[0]
		msg.Text = strings.Join(rest[1:], " ")
	}
	return msg, nil
}

// counted reads a count followed by at least that many tokens.
func counted(args []string) (int, []string, error) {
	if len(args) < 1 {
		return 0, nil, ErrMalformedMessage
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 || len(args)-1 < n {
		return 0, nil, ErrMalformedMessage
	}
	return n, args[1:], nil
}

func joinFields(fields ...string) string {
	nonEmpty := fields[:0:0]
	for _, f := range fields {
		if f != "" {
			nonEmpty = append(nonEmpty, f)
		}
	}
	return strings.Join(nonEmpty, " ")
}

package chat

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		msg  Message
		want string
	}{
		{NewJoin("alice"), "join 5 alice"},
		{NewDisconnect("bob"), "disconnect 3 bob"},
		{NewRequestUsersList(), "request_users_list 0"},
		{NewSendMessage([]string{"bob"}, "hello"), "send_message 11 1 bob hello"},
		{NewSendMessage([]string{"bob", "carol"}, "hi there"), "send_message 20 2 bob carol hi there"},
		{NewResponseUsersList([]string{"alice", "bob"}), "response_users_list 11 2 alice bob"},
		{NewForwardMessage("alice", "hello"), "forward_message 13 1 alice hello"},
		{NewError(UsernameUnavailable), "err_username_unavailable 0"},
		{NewError(ServerFull), "err_server_full 0"},
		{NewError(UnknownMessage), "err_unknown_message 0"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, tt.msg.String())
			require.Equal(t, []byte(tt.want), tt.msg.Encode())
		})
	}
}

func TestParse(t *testing.T) {
	msg, err := Parse("send_message 20 2 bob carol hi   there")
	require.NoError(t, err)
	require.Equal(t, SendMessage, msg.Command)
	require.Equal(t, 20, msg.Length)
	require.Equal(t, []string{"bob", "carol"}, msg.Recipients)
	require.Equal(t, "hi there", msg.Text)

	msg, err = Parse("forward_message 13 1 alice hello")
	require.NoError(t, err)
	require.Equal(t, "alice", msg.Sender)
	require.Equal(t, "hello", msg.Text)

	msg, err = Parse("response_users_list 11 2 alice bob")
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, msg.Users)

	msg, err = Parse("join 5 alice")
	require.NoError(t, err)
	require.Equal(t, NewJoin("alice").Username, msg.Username)

	msg, err = Parse("err_server_full 0")
	require.NoError(t, err)
	require.True(t, msg.Command.IsError())
}

func TestParseEncoded(t *testing.T) {
	for _, m := range []Message{
		NewJoin("alice"),
		NewSendMessage([]string{"bob"}, "a b c"),
		NewForwardMessage("carol", "x"),
		NewResponseUsersList([]string{"a"}),
	} {
		got, err := Parse(m.String())
		require.NoError(t, err)
		require.Equal(t, m.String(), got.String())
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("")
	require.True(t, errors.Is(err, ErrMalformedMessage))

	msg, err := Parse("shout 3 hey")
	require.True(t, errors.Is(err, ErrUnknownCommand))
	require.Equal(t, Command("shout"), msg.Command)

	for _, raw := range []string{
		"join",
		"join x alice",
		"join 5",
		"send_message 3 0 bob",
		"send_message 3 2 bob",
		"send_message 3 x bob hi",
		"forward_message 3 2 a b",
		"response_users_list 3 3 a b",
	} {
		_, err := Parse(raw)
		require.True(t, errors.Is(err, ErrMalformedMessage), raw)
	}
}

func TestParseInput(t *testing.T) {
	in, err := ParseInput("msg 2 bob carol hello world")
	require.NoError(t, err)
	require.Equal(t, Input{Action: ActionMsg, Recipients: []string{"bob", "carol"}, Text: "hello world"}, in)
	msg, ok := in.Message("alice")
	require.True(t, ok)
	require.Equal(t, "send_message 23 2 bob carol hello world", msg.String())

	for _, line := range []string{"list", "help", "quit"} {
		in, err := ParseInput(line)
		require.NoError(t, err)
		require.Equal(t, Action(line), in.Action)
	}

	in, _ = ParseInput("quit")
	msg, ok = in.Message("alice")
	require.True(t, ok)
	require.Equal(t, "disconnect 5 alice", msg.String())

	in, _ = ParseInput("help")
	_, ok = in.Message("alice")
	require.False(t, ok)

	for _, line := range []string{"", "   ", "msg", "msg 1 bob", "msg 0 bob hi", "msg x bob hi", "msg 2 bob hi", "dance"} {
		_, err := ParseInput(line)
		require.True(t, errors.Is(err, ErrIncorrectInput), line)
	}
}

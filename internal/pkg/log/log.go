// Package log add logging utilities.
package log

import (
	"net"
	"strings"
	"time"

	"rudpchat/internal/pkg/chat"
	"rudpchat/internal/pkg/packet"

	"github.com/sirupsen/logrus"
)

// SetLogger configures the default logger. Unrecognised levels fall back to info.
func SetLogger(level string) {
	customFormatter := new(logrus.TextFormatter)
	customFormatter.TimestampFormat = time.RFC3339
	customFormatter.FullTimestamp = true
	logrus.SetFormatter(customFormatter)
	switch strings.ToLower(level) {
	case "trace":
		logrus.SetLevel(logrus.TraceLevel)
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// PacketToFields describes a packet header.
func PacketToFields(pkt packet.Packet) logrus.Fields {
	return logrus.Fields{
		"type": string(pkt.Type),
		"seq":  pkt.Seq,
		"len":  len(pkt.Payload),
	}
}

// MessageToFields describes an application message.
func MessageToFields(msg chat.Message) logrus.Fields {
	fields := logrus.Fields{
		"command": string(msg.Command),
	}
	if msg.Username != "" {
		fields["username"] = msg.Username
	}
	if len(msg.Recipients) > 0 {
		fields["recipients"] = strings.Join(msg.Recipients, ",")
	}
	if msg.Sender != "" {
		fields["sender"] = msg.Sender
	}
	if len(msg.Users) > 0 {
		fields["users"] = len(msg.Users)
	}
	return fields
}

// AddrField returns the key and value used to log a peer address.
func AddrField(addr net.Addr) (string, interface{}) {
	if addr == nil {
		return "addr", ""
	}
	return "addr", addr.String()
}

package events

import (
	"fmt"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

func TestWatchCloseExitsOnBrokerLoss(t *testing.T) {
	connClosed := make(chan *amqp091.Error, 1)
	chClosed := make(chan *amqp091.Error, 1)
	connClosed <- &amqp091.Error{Code: amqp091.ConnectionForced, Reason: "broker shutdown"}

	var fatal string
	watchClose(connClosed, chClosed, func(format string, v ...interface{}) {
		fatal = fmt.Sprintf(format, v...)
	})
	require.Contains(t, fatal, "broker shutdown")
}

func TestWatchCloseExitsOnChannelLoss(t *testing.T) {
	connClosed := make(chan *amqp091.Error, 1)
	chClosed := make(chan *amqp091.Error, 1)
	chClosed <- &amqp091.Error{Code: amqp091.ChannelError, Reason: "channel torn down"}

	var fatal string
	watchClose(connClosed, chClosed, func(format string, v ...interface{}) {
		fatal = fmt.Sprintf(format, v...)
	})
	require.Contains(t, fatal, "channel torn down")
}

func TestWatchCloseIgnoresDeliberateClose(t *testing.T) {
	connClosed := make(chan *amqp091.Error, 1)
	chClosed := make(chan *amqp091.Error, 1)
	close(connClosed)

	called := false
	watchClose(connClosed, chClosed, func(string, ...interface{}) {
		called = true
	})
	require.False(t, called)
}

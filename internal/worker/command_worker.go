// Package worker runs the consume loop that wires the message transport to
// the command dispatcher.
package worker

import (
	"context"

	"moneyplus/internal/amqp"
	"moneyplus/internal/log"
)

// Transport is the slice of the AMQP client the worker needs.
type Transport interface {
	ConsumeCommands(ctx context.Context, handler func(context.Context, *amqp.CommandMessage) error) error
	PublishReply(ctx context.Context, reply *amqp.ReplyMessage) error
}

// Handler processes one command and reports whether a reply should be sent.
type Handler interface {
	Handle(ctx context.Context, userID, text string) (string, bool)
}

// CommandWorker consumes inbound commands, dispatches them and publishes
// the replies.
type CommandWorker struct {
	transport  Transport
	dispatcher Handler
	logger     *log.Logger
}

// NewCommandWorker wires the transport, dispatcher and logging port.
func NewCommandWorker(transport Transport, dispatcher Handler, logger *log.Logger) *CommandWorker {
	return &CommandWorker{
		transport:  transport,
		dispatcher: dispatcher,
		logger:     logger.WithComponent(log.ComponentWorker),
	}
}

// Run consumes commands until ctx is done.
func (w *CommandWorker) Run(ctx context.Context) error {
	return w.transport.ConsumeCommands(ctx, w.handle)
}

func (w *CommandWorker) handle(ctx context.Context, msg *amqp.CommandMessage) error {
	reply, ok := w.dispatcher.Handle(ctx, msg.UserID, msg.Text)
	if !ok {
		return nil
	}

	if err := w.transport.PublishReply(ctx, amqp.NewReplyMessage(msg.UserID, reply, msg.MessageID)); err != nil {
		// Never signal an error here: the ledger mutation already happened,
		// and a redelivery of the command would apply it twice. The reply
		// is dropped and the loss logged.
		w.logger.ErrorContext(ctx, "Failed to publish reply",
			log.FieldUserID, msg.UserID,
			log.FieldMessageID, msg.MessageID,
			log.FieldError, err)
	}
	return nil
}

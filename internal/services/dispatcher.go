// Package services orchestrates command handling: parse the inbound text,
// apply it to the ledger store, render the reply.
package services

import (
	"context"
	"time"

	"moneyplus/internal/command"
	"moneyplus/internal/core"
	"moneyplus/internal/eval"
	"moneyplus/internal/ledger"
	"moneyplus/internal/log"
	"moneyplus/internal/report"
)

// Dispatcher turns one inbound (text, user id) pair into at most one reply.
// It is stateless per call; all ledger state lives in the store.
type Dispatcher struct {
	store  *ledger.Store
	logger *log.Logger
}

// NewDispatcher wires the ledger store and an explicit logging port.
func NewDispatcher(store *ledger.Store, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		store:  store,
		logger: logger.WithComponent(log.ComponentDispatcher),
	}
}

// Handle processes one command. The second return value reports whether a
// reply should be sent; unrecognized text and failed expressions produce
// none, so the engine stays silent on ordinary conversation.
func (d *Dispatcher) Handle(ctx context.Context, userID, text string) (string, bool) {
	cmd := command.Parse(text)

	switch cmd.Kind {
	case command.KindTransaction:
		return d.handleTransaction(ctx, userID, cmd)
	case command.KindInvalid:
		// Deliberately silent: a stray "+"/"-" prefixed message must not
		// produce a reply, only a diagnostic entry.
		d.logger.WarnContext(ctx, "Rejected transaction expression",
			log.FieldUserID, userID,
			log.FieldExpression, cmd.Expression,
			log.FieldError, cmd.Err)
		return "", false
	case command.KindClear:
		_, err := d.store.Clear(ctx, userID)
		d.logPersistence(ctx, userID, cmd.Kind, err)
		return report.Cleared(), true
	case command.KindList:
		led, err := d.store.Load(ctx, userID)
		d.logPersistence(ctx, userID, cmd.Kind, err)
		return report.List(led), true
	case command.KindSummary:
		led, err := d.store.Load(ctx, userID)
		d.logPersistence(ctx, userID, cmd.Kind, err)
		return report.Summary(led), true
	case command.KindHelp:
		return report.Help(), true
	default:
		return "", false
	}
}

func (d *Dispatcher) handleTransaction(ctx context.Context, userID string, cmd command.Command) (string, bool) {
	amount, err := eval.Evaluate(cmd.Expression)
	if err != nil {
		d.logger.WarnContext(ctx, "Expression evaluation failed",
			log.FieldUserID, userID,
			log.FieldExpression, cmd.Expression,
			log.FieldError, err)
		return "", false
	}

	tx := core.Transaction{
		Amount:      amount,
		Expression:  cmd.Expression,
		Description: cmd.Description,
		Tag:         cmd.Tag,
		Timestamp:   time.Now().Truncate(time.Second),
	}

	led, err := d.store.AppendTransaction(ctx, userID, tx)
	// Best-effort durability: a failed write is logged but the updated
	// in-memory ledger still backs the confirmation reply.
	d.logPersistence(ctx, userID, cmd.Kind, err)

	return report.Recorded(tx, led), true
}

func (d *Dispatcher) logPersistence(ctx context.Context, userID string, kind command.Kind, err error) {
	if err == nil {
		return
	}
	d.logger.ErrorContext(ctx, "Ledger persistence failed",
		log.FieldUserID, userID,
		log.FieldCommand, kind.String(),
		log.FieldError, err)
}

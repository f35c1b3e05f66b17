package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"moneyplus/internal/amqp"
	"moneyplus/internal/log"
)

type fakeTransport struct {
	inbound     []*amqp.CommandMessage
	published   []*amqp.ReplyMessage
	publishFail bool
}

func (f *fakeTransport) ConsumeCommands(ctx context.Context, handler func(context.Context, *amqp.CommandMessage) error) error {
	for _, msg := range f.inbound {
		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeTransport) PublishReply(_ context.Context, reply *amqp.ReplyMessage) error {
	if f.publishFail {
		return errors.New("broker unreachable")
	}
	f.published = append(f.published, reply)
	return nil
}

type fakeDispatcher struct{}

func (fakeDispatcher) Handle(_ context.Context, userID, text string) (string, bool) {
	if text == "abc" {
		return "", false
	}
	return "reply to " + userID, true
}

func quietLogger() *log.Logger {
	return log.New(log.Config{
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})
}

func TestWorkerPublishesOneReplyPerCommand(t *testing.T) {
	transport := &fakeTransport{inbound: []*amqp.CommandMessage{
		{UserID: "u1", Text: "+100", MessageID: "m1"},
		{UserID: "u2", Text: "/查账", MessageID: "m2"},
	}}

	w := NewCommandWorker(transport, fakeDispatcher{}, quietLogger())
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(transport.published) != 2 {
		t.Fatalf("published %d replies, want 2", len(transport.published))
	}
	if transport.published[0].UserID != "u1" || transport.published[0].InReplyTo != "m1" {
		t.Errorf("first reply = %+v", transport.published[0])
	}
}

func TestWorkerStaysSilentForIgnoredText(t *testing.T) {
	transport := &fakeTransport{inbound: []*amqp.CommandMessage{
		{UserID: "u1", Text: "abc"},
	}}

	w := NewCommandWorker(transport, fakeDispatcher{}, quietLogger())
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(transport.published) != 0 {
		t.Errorf("published %d replies, want none", len(transport.published))
	}
}

func TestWorkerDoesNotFailOnPublishError(t *testing.T) {
	// A failed reply publish must not error the handler: the ledger
	// mutation already happened and a redelivery would apply it twice.
	transport := &fakeTransport{
		inbound:     []*amqp.CommandMessage{{UserID: "u1", Text: "+100"}},
		publishFail: true,
	}

	w := NewCommandWorker(transport, fakeDispatcher{}, quietLogger())
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run returned %v, want nil", err)
	}
}

package runtime

import (
	"coin-chat/contract"
	"coin-chat/domain"
	"coin-chat/domain/payment"
	"coin-chat/errors"
	"coin-chat/moderation"
	"coin-chat/observability"
	"coin-chat/repositories"
	"coin-chat/services"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
)

// Outcome tells the receive loop what to do after one inbound frame.
type Outcome int

const (
	Continue Outcome = iota
	Terminate
)

// Dispatcher runs the receive loop of every connection: it classifies each
// inbound frame, executes payments, persists the message and relays it.
type Dispatcher struct {
	registry  contract.IRegistry
	chats     repositories.IChatRepository
	payments  services.IPaymentService
	moderator *moderation.Moderator
	monitor   *observability.MonitoringManager
	validator *validator.Validate
	now       func() time.Time
	log       *slog.Logger
}

func NewDispatcher(
	registry contract.IRegistry,
	chats repositories.IChatRepository,
	payments services.IPaymentService,
	moderator *moderation.Moderator,
	monitor *observability.MonitoringManager,
	log *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		chats:     chats,
		payments:  payments,
		moderator: moderator,
		monitor:   monitor,
		validator: validator.New(),
		now:       time.Now,
		log:       log,
	}
}

// Serve registers conn for username and processes its frames until the client
// leaves, sends a malformed frame or ctx is canceled. The registry entry is
// released on every exit path, unless a newer connection took it over.
// A clean disconnect returns nil.
func (d *Dispatcher) Serve(ctx context.Context, username string, conn contract.Connection) error {
	d.registry.Register(username, conn)
	d.log.Info("User connected", "user", username)
	defer func() {
		if d.registry.Release(username, conn) {
			d.log.Info("User disconnected", "user", username)
		} else {
			d.log.Debug("Superseded connection ended", "user", username)
		}
	}()

	for {
		frame, err := conn.Receive(ctx)
		if err != nil {
			if stderrors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receive from %s: %w", username, err)
		}
		if d.Handle(ctx, username, conn, frame) == Terminate {
			return errors.ErrMalformedInput
		}
	}
}

// Handle processes one inbound frame of sender. Payment and storage failures
// are reported to the sender only and never end the loop.
func (d *Dispatcher) Handle(ctx context.Context, sender string, out contract.Outbound, frame []byte) Outcome {
	var in domain.InboundFrame
	if err := json.Unmarshal(frame, &in); err != nil {
		d.log.Warn("Undecodable frame", "user", sender, "error", err)
		return Terminate
	}
	if err := d.validator.Struct(in); err != nil {
		d.log.Warn("Invalid frame", "user", sender, "error", err)
		return Terminate
	}

	at := d.now()
	body, err := d.resolveBody(sender, in.Message)
	if err != nil {
		d.sendError(ctx, sender, out, err)
		return Continue
	}

	message := domain.NewMessage(sender, in.To, body, at)
	if err = d.chats.Append(message); err != nil {
		d.log.Error("Message not saved", "user", sender, "to", in.To, "error", err)
		d.monitor.IncrPersistenceFails()
		d.sendError(ctx, sender, out, fmt.Errorf("%w: %w", errors.ErrPersistence, err))
		return Continue
	}

	d.monitor.IncrMessagesRelayed()
	d.deliver(ctx, out, message)
	return Continue
}

// resolveBody returns the body to store: the receipt of an executed payment,
// or the moderated text of a plain message.
func (d *Dispatcher) resolveBody(sender, body string) (string, error) {
	switch parsed := payment.Parse(body).(type) {
	case payment.Payment:
		receipt, err := d.payments.Pay(sender, parsed.Command)
		if err != nil {
			d.monitor.IncrPaymentsRefused()
			return "", err
		}
		d.monitor.IncrPaymentsDone()
		return receipt.String(), nil
	case payment.ParseError:
		d.log.Info("Payment refused", "sender", sender, "error", parsed.Err)
		d.monitor.IncrPaymentsRefused()
		return "", parsed.Err
	case payment.Plain:
		content, words := d.moderator.Censor(parsed.Body)
		if len(words) > 0 {
			d.log.Debug("Message censored", "user", sender, "words", words)
		}
		return content, nil
	default:
		return "", fmt.Errorf("unexpected parse result %T", parsed)
	}
}

// deliver echoes the message to its sender, then hands it to the recipient
// when online. Offline recipients only find it in their history. A message
// to oneself is stored once but arrives twice: echo and delivery.
func (d *Dispatcher) deliver(ctx context.Context, sender contract.Outbound, message domain.Message) {
	outbound := message.ToOutbound()
	if err := sender.Send(ctx, outbound); err != nil {
		d.log.Warn("Echo failed", "user", message.From, "error", err)
	}
	recipient, ok := d.registry.Lookup(message.To)
	if !ok {
		d.log.Debug("Recipient offline", "user", message.To)
		return
	}
	if err := recipient.Send(ctx, outbound); err != nil {
		d.log.Warn("Delivery failed", "user", message.To, "error", err)
	}
}

func (d *Dispatcher) sendError(ctx context.Context, sender string, out contract.Outbound, err error) {
	if sendErr := out.Send(ctx, domain.OutboundError{Error: errors.PublicMessage(err)}); sendErr != nil {
		d.log.Warn("Error report failed", "user", sender, "error", sendErr)
	}
}

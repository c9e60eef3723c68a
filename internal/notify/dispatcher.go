// Package notify is the fire-and-forget side channel. Sends are queued to
// a background worker; the caller never waits on delivery and never sees a
// delivery failure.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/domain"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/store"
)

type Kind string

const (
	KindWelcome           Kind = "welcome"
	KindOrderConfirmation Kind = "order-confirmation"
	KindOrderStatusChange Kind = "order-status-change"
)

type Message struct {
	Kind      Kind
	Recipient string
	UserID    string
	Subject   string
	Body      string
}

// Mailer delivers one message. A nil mailer makes every send a no-op
// success.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

const sendTimeout = 15 * time.Second

type Dispatcher struct {
	mailer  Mailer
	records store.Collection[domain.Notification]
	log     *logrus.Logger

	queue   chan Message
	dropped func()
	wg      sync.WaitGroup
}

// NewDispatcher starts the background worker. records may be nil to skip
// in-app notification rows; dropped is called once per message lost to a
// full queue (may be nil).
func NewDispatcher(mailer Mailer, records store.Collection[domain.Notification], log *logrus.Logger, queueSize int, dropped func()) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	d := &Dispatcher{
		mailer:  mailer,
		records: records,
		log:     log,
		queue:   make(chan Message, queueSize),
		dropped: dropped,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Send schedules a message and returns immediately. When the queue is full
// the message is dropped and logged; callers are never blocked or failed
// by the side channel.
func (d *Dispatcher) Send(msg Message) {
	select {
	case d.queue <- msg:
	default:
		d.log.WithFields(logrus.Fields{"kind": msg.Kind, "user": msg.UserID}).
			Warn("notification queue full, message dropped")
		if d.dropped != nil {
			d.dropped()
		}
	}
}

// Close stops accepting messages, drains the queue and waits for the
// worker to finish.
func (d *Dispatcher) Close() {
	close(d.queue)
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if d.records != nil && msg.UserID != "" {
		rec := domain.Notification{
			UserID:    msg.UserID,
			Type:      "order",
			Title:     msg.Subject,
			Message:   msg.Body,
			CreatedAt: time.Now().UTC(),
		}
		if msg.Kind == KindWelcome {
			rec.Type = "system"
		}
		if err := d.records.Create(ctx, &rec); err != nil {
			d.log.WithError(err).Warn("failed to record notification")
		}
	}

	if d.mailer == nil {
		return
	}
	if err := d.mailer.Send(ctx, msg.Recipient, msg.Subject, msg.Body); err != nil {
		d.log.WithError(err).WithFields(logrus.Fields{"kind": msg.Kind, "user": msg.UserID}).
			Warn("notification delivery failed")
	}
}

package notify

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/domain"
	"github.com/Ayush-Pandey0/atlas-arrow-backend/internal/store"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type mockMailer struct {
	mu    sync.Mutex
	sent  []string
	err   error
	block chan struct{}
}

func (m *mockMailer) Send(_ context.Context, to, subject, _ string) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+"/"+subject)
	return m.err
}

func (m *mockMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestSendDeliversAndCloseDrains(t *testing.T) {
	mailer := &mockMailer{}
	d := NewDispatcher(mailer, nil, testLogger(), 8, nil)

	d.Send(Message{Kind: KindOrderConfirmation, Recipient: "u1", Subject: "Order confirmed"})
	d.Send(Message{Kind: KindOrderStatusChange, Recipient: "u1", Subject: "Order shipped"})
	d.Close()

	assert.Equal(t, 2, mailer.count())
}

func TestNilMailerIsNoOpSuccess(t *testing.T) {
	d := NewDispatcher(nil, nil, testLogger(), 8, nil)
	d.Send(Message{Kind: KindWelcome, Recipient: "u1"})
	d.Close()
}

func TestDeliveryFailureNeverPropagates(t *testing.T) {
	mailer := &mockMailer{err: errors.New("smtp down")}
	d := NewDispatcher(mailer, nil, testLogger(), 8, nil)

	d.Send(Message{Kind: KindOrderConfirmation, Recipient: "u1"})
	d.Close()

	assert.Equal(t, 1, mailer.count())
}

func TestFullQueueDropsWithoutBlocking(t *testing.T) {
	mailer := &mockMailer{block: make(chan struct{})}
	var drops int
	var mu sync.Mutex
	d := NewDispatcher(mailer, nil, testLogger(), 1, func() {
		mu.Lock()
		drops++
		mu.Unlock()
	})

	// First message occupies the worker, second fills the queue, the rest
	// must drop immediately.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			d.Send(Message{Kind: KindOrderConfirmation, Recipient: "u1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a full queue")
	}

	close(mailer.block)
	d.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, drops, 1)
}

func TestRecordsInAppNotification(t *testing.T) {
	records := store.NewMemory[domain.Notification](store.NewMemoryStore(), "notifications")
	d := NewDispatcher(nil, records, testLogger(), 8, nil)

	d.Send(Message{Kind: KindOrderConfirmation, UserID: "u1", Subject: "Order confirmed", Body: "AA123"})
	d.Close()

	rows, err := records.Find(context.Background(), store.Where("user_id", store.OpEq, "u1"), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Order confirmed", rows[0].Title)
	assert.Equal(t, "order", rows[0].Type)
	assert.False(t, rows[0].Read)
}

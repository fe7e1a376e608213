package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []MailJob
	fail bool
}

func (m *recordingMailer) SendVerification(to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return errors.New("smtp unreachable")
	}

	m.sent = append(m.sent, MailJob{To: to, Token: token})
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestMailQueueDelivers(t *testing.T) {
	mailer := &recordingMailer{}
	q := NewMailQueue(mailer)
	q.StartWorkerPool()

	q.Enqueue(&MailJob{To: "a@x.com", Token: "tok-1"})
	q.Enqueue(&MailJob{To: "b@x.com", Token: "tok-2"})

	require.Eventually(t, func() bool {
		return mailer.count() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestMailQueueSwallowsSendFailures(t *testing.T) {
	mailer := &recordingMailer{fail: true}
	q := NewMailQueue(mailer)
	q.StartWorkerPool()

	// A failing transport only produces log lines, nothing blocks or panics
	q.Enqueue(&MailJob{To: "a@x.com", Token: "tok-1"})

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, mailer.count())

	// And the workers are still alive afterwards
	mailer.mu.Lock()
	mailer.fail = false
	mailer.mu.Unlock()

	q.Enqueue(&MailJob{To: "b@x.com", Token: "tok-2"})

	require.Eventually(t, func() bool {
		return mailer.count() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestMailQueueDropsWhenFull(t *testing.T) {
	mailer := &recordingMailer{}
	q := NewMailQueue(mailer)
	// No workers started: the buffer fills up and overflow is dropped
	for i := 0; i < mailQueueSize+10; i++ {
		q.Enqueue(&MailJob{To: "a@x.com", Token: "tok"})
	}

	// Enqueue never blocked, which is the property under test
	assert.Zero(t, mailer.count())
}

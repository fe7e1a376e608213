package service

import (
	"go.uber.org/zap"
)

const mailQueueSize = 64

type MailJob struct {
	To        string
	Token     string
	RequestID string
}

// MailQueue decouples mail dispatch from the request path. A registration
// responds as soon as the record is persisted; a failed send is logged by
// the worker and never rolls anything back
type MailQueue struct {
	jobs    chan *MailJob
	mailer  Mailer
	workers int
}

func NewMailQueue(m Mailer) *MailQueue {
	return &MailQueue{
		jobs:    make(chan *MailJob, mailQueueSize),
		mailer:  m,
		workers: 2,
	}
}

func (q *MailQueue) StartWorkerPool() {
	for i := 0; i < q.workers; i++ {
		go q.worker()
	}
}

func (q *MailQueue) worker() {
	for job := range q.jobs {
		err := q.mailer.SendVerification(job.To, job.Token)
		if err != nil {
			zap.L().Error("Failed to send verification email",
				zap.Error(err),
				zap.String("to", job.To),
				zap.String("requestID", job.RequestID),
			)
			continue
		}

		zap.L().Debug("Verification email sent",
			zap.String("to", job.To),
			zap.String("requestID", job.RequestID),
		)
	}
}

// Enqueue hands a mail job to the workers. A full queue drops the job
// with a log line instead of blocking the request
func (q *MailQueue) Enqueue(job *MailJob) {
	select {
	case q.jobs <- job:
	default:
		zap.L().Error("Mail queue is full, dropping job",
			zap.String("to", job.To),
			zap.String("requestID", job.RequestID),
		)
	}
}

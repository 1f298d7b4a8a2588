package audit

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/USA-RedDragon/arm-panel/internal/db/models"
	"github.com/USA-RedDragon/arm-panel/internal/metrics"
	"github.com/USA-RedDragon/arm-panel/internal/panel"
	"github.com/mattn/go-nulltype"
	"github.com/puzpuzpuz/xsync/v3"
	"gorm.io/gorm"
)

const QueueDepth = 100

// Queue writes audit records in the background so the dispatcher never waits
// on the database.
type Queue struct {
	db         *gorm.DB
	workers    uint
	queue      chan models.Command
	metrics    *metrics.Metrics
	activeJobs *xsync.Counter
	wg         sync.WaitGroup
	mu         sync.RWMutex
	closed     bool
	now        func() time.Time
}

func NewQueue(db *gorm.DB, workers uint, metrics *metrics.Metrics) *Queue {
	return &Queue{
		db:         db,
		workers:    workers,
		queue:      make(chan models.Command, QueueDepth),
		metrics:    metrics,
		activeJobs: xsync.NewCounter(),
		now:        time.Now,
	}
}

func (q *Queue) Start() {
	for range q.workers {
		q.wg.Add(1)
		go q.work()
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for command := range q.queue {
		q.activeJobs.Inc()
		q.metrics.SetAuditActiveWorkers(float64(q.activeJobs.Value()))
		q.metrics.SetAuditQueueSize(float64(len(q.queue)))

		if err := models.CreateCommand(q.db, &command); err != nil {
			q.metrics.IncrementAuditErrors("write")
			slog.Error("Error writing audit record", "kind", command.Kind, "error", err)
		}

		q.activeJobs.Dec()
		q.metrics.SetAuditActiveWorkers(float64(q.activeJobs.Value()))
	}
}

// Stop drains what is already queued and waits for the writers.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.queue)
	q.mu.Unlock()
	q.wg.Wait()
}

// Record never blocks. When the queue is full the record is dropped and
// counted.
func (q *Queue) Record(kind panel.Kind, detail any, outcome string, err error) {
	command := models.Command{
		Kind:      models.CommandKind(kind),
		Outcome:   outcome,
		CreatedAt: q.now(),
	}
	raw, marshalErr := json.Marshal(detail)
	if marshalErr != nil {
		q.metrics.IncrementAuditErrors("marshal")
		slog.Warn("Error marshalling audit detail", "kind", kind, "error", marshalErr)
	} else {
		command.Detail = string(raw)
	}
	if err != nil {
		command.Error = nulltype.NullStringOf(err.Error())
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return
	}
	select {
	case q.queue <- command:
		q.metrics.SetAuditQueueSize(float64(len(q.queue)))
	default:
		q.metrics.IncrementAuditErrors("queue_full")
		slog.Warn("Audit queue full, dropping record", "kind", kind)
	}
}

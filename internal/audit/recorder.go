package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/youthlift/backoffice/internal/metrics"
	"github.com/youthlift/backoffice/internal/models"
)

const writeTimeout = 5 * time.Second

// Recorder accepts audit entries and persists them from a background
// goroutine. Record never blocks the caller: when the bounded queue is
// full the entry is dropped, counted and logged.
type Recorder struct {
	db      *gorm.DB
	queue   chan models.AuditLog
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool

	closeOnce sync.Once
	done      chan struct{}
}

// NewRecorder constructs a Recorder and starts its writer goroutine.
// metrics may be nil.
func NewRecorder(db *gorm.DB, queueSize int, m *metrics.Metrics) *Recorder {
	if queueSize <= 0 {
		queueSize = 256
	}
	r := &Recorder{
		db:      db,
		queue:   make(chan models.AuditLog, queueSize),
		metrics: m,
		done:    make(chan struct{}),
	}
	go r.writeLoop()
	return r
}

// Record enqueues one audit entry. Missing fields get defaults: timestamp
// now, system actor, info severity (warning for security actions and
// failures). Snapshots are sanitized before they leave the request path.
func (r *Recorder) Record(e Entry) {
	if r == nil {
		return
	}

	row := r.buildRow(e)

	// The read lock orders this send against Close so a late Record can
	// never hit a closed channel.
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		if r.metrics != nil {
			r.metrics.AuditRecordsDroppedTotal.Inc()
		}
		log.Warnf("audit: recorder closed, dropped %s %s record", row.Action, row.Resource)
		return
	}

	select {
	case r.queue <- row:
	default:
		if r.metrics != nil {
			r.metrics.AuditRecordsDroppedTotal.Inc()
		}
		log.Warnf("audit: queue full, dropped %s %s record", row.Action, row.Resource)
	}
}

// RecordSecurityEvent records an event with no signed-in actor, such as a
// rate limit violation or an anonymous unauthorized attempt.
func (r *Recorder) RecordSecurityEvent(action, resource string, actor Actor, req RequestMeta, message string) {
	r.Record(Entry{
		Action:       action,
		Resource:     resource,
		Actor:        actor,
		Request:      req,
		Status:       StatusFailure,
		ErrorMessage: message,
	})
}

func (r *Recorder) buildRow(e Entry) models.AuditLog {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	status := e.Status
	if status == "" {
		status = StatusSuccess
	}
	severity := e.Severity
	if severity == "" {
		severity = defaultSeverity(e.Action, status)
	}
	actorEmail := e.Actor.Email
	if actorEmail == "" {
		actorEmail = ActorSystem
	}

	return models.AuditLog{
		Action:       e.Action,
		Resource:     e.Resource,
		ResourceID:   e.ResourceID,
		ActorID:      e.Actor.ID,
		ActorEmail:   actorEmail,
		IP:           e.Request.IP,
		UserAgent:    e.Request.UserAgent,
		Path:         e.Request.Path,
		Before:       marshalSnapshot(e.Before),
		After:        marshalSnapshot(e.After),
		Status:       status,
		ErrorMessage: e.ErrorMessage,
		Severity:     severity,
		CreatedAt:    ts,
	}
}

func marshalSnapshot(snapshot map[string]any) datatypes.JSON {
	cleaned := sanitizeSnapshot(snapshot)
	if cleaned == nil {
		return nil
	}
	raw, errMarshal := json.Marshal(cleaned)
	if errMarshal != nil {
		log.WithError(errMarshal).Warn("audit: marshal snapshot failed")
		return nil
	}
	return datatypes.JSON(raw)
}

func (r *Recorder) writeLoop() {
	defer close(r.done)
	for row := range r.queue {
		r.writeOne(row)
	}
}

// writeOne persists a single record. Failures are logged and dropped: the
// pipeline is best-effort observability, not an at-least-once ledger.
func (r *Recorder) writeOne(row models.AuditLog) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if errCreate := r.db.WithContext(ctx).Create(&row).Error; errCreate != nil {
		if r.metrics != nil {
			r.metrics.AuditWriteFailuresTotal.Inc()
		}
		log.WithError(errCreate).Warn("audit: write record failed")
		return
	}
	if r.metrics != nil {
		r.metrics.AuditRecordsWrittenTotal.Inc()
	}
}

// Close stops accepting entries and drains the queue. Safe to call more
// than once.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()
		close(r.queue)
		<-r.done
	})
}

// Package operator runs one button state machine per operator and fans the
// derived events out to the publisher, the live feed and the indicator light.
package operator

import (
	"context"
	"sync"
	"time"

	"operator-button-service/internal/models"
	"operator-button-service/internal/observability/logging"
	"operator-button-service/internal/observability/metrics"
	"operator-button-service/internal/service/buttons"
	"operator-button-service/internal/service/indicator"
	"operator-button-service/internal/service/session"
)

// Publisher sends events downstream (Kafka).
type Publisher interface {
	Publish(ctx context.Context, ev models.ButtonEvent) error
}

// Broadcaster pushes events to live subscribers.
type Broadcaster interface {
	Broadcast(ev models.ButtonEvent)
}

// Validator rejects malformed events before they leave the service.
type Validator interface {
	Validate(ev models.ButtonEvent) error
}

// Deps are the collaborators shared by every operator handler.
// Any of them may be nil except Sessions and Metrics, which get defaults.
type Deps struct {
	Publisher   Publisher
	Validator   Validator
	Broadcaster Broadcaster
	Indicator   *indicator.Indicator
	Sessions    *session.Generator
	Metrics     *metrics.Metrics
}

func (d Deps) withDefaults() Deps {
	if d.Sessions == nil {
		d.Sessions = session.New()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.DefaultMetrics
	}
	return d
}

// Handler receives the derived button events of one operator.
// It implements buttons.Listener and buttons.Observer. Callbacks arrive from
// the operator's own goroutine; Status may be called from anywhere.
type Handler struct {
	operatorId string
	deps       Deps

	mu           sync.RWMutex
	status       models.OperatorStatus
	sessionStart time.Time
}

// NewHandler creates a handler for one operator.
func NewHandler(operatorId string, deps Deps) *Handler {
	return &Handler{
		operatorId: operatorId,
		deps:       deps.withDefaults(),
		status: models.OperatorStatus{
			OperatorID: operatorId,
			Phase:      buttons.PhaseIdle.String(),
		},
	}
}

// Status returns a copy of the operator's current status.
func (h *Handler) Status() models.OperatorStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// --- buttons.Listener implementation ---

// OnButtonDown keeps the indicator lit while a button is held.
func (h *Handler) OnButtonDown(s buttons.Snapshot) {
	if h.deps.Indicator != nil {
		h.deps.Indicator.ButtonDown(h.operatorId)
	}
}

// OnSessionStarted opens a new session and announces it.
func (h *Handler) OnSessionStarted() {
	sessionId := h.deps.Sessions.Next(h.operatorId)

	h.mu.Lock()
	h.status.SessionID = sessionId
	h.status.Sessions++
	h.sessionStart = time.Now()
	h.mu.Unlock()

	h.deps.Metrics.RecordSessionStarted()
	lg := logging.WithSession(h.operatorId, sessionId)
	lg.Debug().Msg("Session started")

	h.emit(models.NewButtonEvent(models.EventSessionStarted, h.operatorId, sessionId))
}

// OnOneButtonReleased closes a session that only ever had one button down.
func (h *Handler) OnOneButtonReleased() {
	h.finish(buttons.ReleaseOneUp)
}

// OnTwoButtonsReleased closes a session that had both buttons down.
func (h *Handler) OnTwoButtonsReleased() {
	h.finish(buttons.ReleaseTwoUp)
}

// OnOutput mirrors every step into the visible status.
func (h *Handler) OnOutput(out buttons.Output) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status.Phase = out.State.Phase.String()
	h.status.Button1 = out.Snapshot.Button1
	h.status.Button2 = out.Snapshot.Button2
	h.status.LastSnapshotAt = time.Now().UnixMilli()
}

func (h *Handler) finish(release buttons.Release) {
	h.mu.Lock()
	sessionId := h.status.SessionID
	duration := time.Since(h.sessionStart)
	h.status.SessionID = ""
	if release == buttons.ReleaseTwoUp {
		h.status.TwoUpReleases++
	} else {
		h.status.OneUpReleases++
	}
	h.mu.Unlock()

	if h.deps.Indicator != nil {
		h.deps.Indicator.SessionEnded(h.operatorId)
	}
	h.deps.Metrics.RecordRelease(release.String(), duration.Seconds())

	eventType := models.EventOneButtonReleased
	if release == buttons.ReleaseTwoUp {
		eventType = models.EventTwoButtonsReleased
	}
	ev := models.NewButtonEvent(eventType, h.operatorId, sessionId)
	ev.Release = release.String()
	ev.ReachedBoth = release == buttons.ReleaseTwoUp
	ev.DurationMs = duration.Milliseconds()

	lg := logging.WithSession(h.operatorId, sessionId)
	lg.Debug().
		Str("release", ev.Release).
		Dur("duration", duration).
		Msg("Session ended")

	h.emit(ev)
}

func (h *Handler) emit(ev models.ButtonEvent) {
	if h.deps.Validator != nil {
		if err := h.deps.Validator.Validate(ev); err != nil {
			h.deps.Metrics.RecordValidationError(ev.EventType)
			lg := logging.WithSession(h.operatorId, ev.SessionID)
			lg.Error().
				Err(err).
				Str("eventType", ev.EventType).
				Msg("Event failed validation, not published")
			return
		}
	}

	if h.deps.Broadcaster != nil {
		h.deps.Broadcaster.Broadcast(ev)
	}

	if h.deps.Publisher != nil {
		if err := h.deps.Publisher.Publish(context.Background(), ev); err != nil {
			lg := logging.WithSession(h.operatorId, ev.SessionID)
			lg.Error().
				Err(err).
				Str("eventType", ev.EventType).
				Msg("Failed to publish event")
		}
	}
}

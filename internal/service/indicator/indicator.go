// Package indicator drives a talk indicator light from button sessions.
// The light is on while at least one operator holds a button.
package indicator

import (
	"sync"

	"github.com/rs/zerolog"

	"operator-button-service/internal/observability/logging"
	"operator-button-service/internal/observability/metrics"
)

// Light switches a physical indicator.
type Light interface {
	Set(on bool) error
}

// Indicator tracks which operators hold a button and switches the light
// on the first and off with the last.
type Indicator struct {
	mu      sync.Mutex
	light   Light
	active  map[string]bool
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// New creates an indicator. A nil light makes every call a no-op.
func New(light Light, m *metrics.Metrics) *Indicator {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &Indicator{
		light:   light,
		active:  make(map[string]bool),
		metrics: m,
		logger:  logging.WithComponent("indicator"),
	}
}

// ButtonDown marks an operator as holding a button.
func (i *Indicator) ButtonDown(operatorId string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.active[operatorId] {
		return
	}
	i.active[operatorId] = true
	if len(i.active) == 1 {
		i.set(true)
	}
}

// SessionEnded clears an operator. The light goes off with the last one.
func (i *Indicator) SessionEnded(operatorId string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.active[operatorId] {
		return
	}
	delete(i.active, operatorId)
	if len(i.active) == 0 {
		i.set(false)
	}
}

// Off forgets every active operator and switches the light off.
func (i *Indicator) Off() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.active) == 0 {
		return
	}
	i.active = make(map[string]bool)
	i.set(false)
}

// On reports whether any operator currently holds a button.
func (i *Indicator) On() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.active) > 0
}

// must be called with lock held
func (i *Indicator) set(on bool) {
	if i.light == nil {
		return
	}
	if err := i.light.Set(on); err != nil {
		i.metrics.RecordIndicatorError()
		i.logger.Warn().Err(err).Bool("on", on).Msg("Failed to switch indicator light")
	}
}

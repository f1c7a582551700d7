package operator

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"operator-button-service/internal/models"
	"operator-button-service/internal/observability/logging"
	"operator-button-service/internal/service/buttons"
)

// ErrRegistryClosed is returned when pushing after Close.
var ErrRegistryClosed = errors.New("operator registry closed")

// ErrEmptyOperator is returned for snapshots without an operator identity.
var ErrEmptyOperator = errors.New("operator id is empty")

// ErrTooManyOperators is returned for a new operator once the registry is full.
var ErrTooManyOperators = errors.New("operator limit reached")

const (
	defaultInboxSize    = 64
	defaultMaxOperators = 256
)

type operator struct {
	id      string
	inbox   chan buttons.Snapshot
	handler *Handler
}

// Registry owns one state machine per operator. Machines are created on the
// first snapshot for an operator and each runs in its own goroutine, so
// operators never share session state.
type Registry struct {
	deps         Deps
	inboxSize    int
	maxOperators int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	operators map[string]*operator
	closed    bool
}

// NewRegistry creates an empty registry. Operator ids come from clients, so
// at most maxOperators machines are ever created. Values <= 0 use the defaults.
func NewRegistry(deps Deps, inboxSize, maxOperators int) *Registry {
	if inboxSize <= 0 {
		inboxSize = defaultInboxSize
	}
	if maxOperators <= 0 {
		maxOperators = defaultMaxOperators
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		deps:         deps.withDefaults(),
		inboxSize:    inboxSize,
		maxOperators: maxOperators,
		ctx:          ctx,
		cancel:       cancel,
		operators:    make(map[string]*operator),
	}
}

// Push delivers a snapshot to an operator's machine, creating it if needed.
// It blocks while the operator's inbox is full, until ctx is done or the
// registry is closed. Snapshots for one operator are processed in the order
// Push calls return.
func (r *Registry) Push(ctx context.Context, operatorId, source string, s buttons.Snapshot) error {
	if operatorId == "" {
		r.deps.Metrics.RecordSnapshotDropped("empty_operator")
		return ErrEmptyOperator
	}

	op, err := r.get(operatorId)
	if errors.Is(err, ErrTooManyOperators) {
		r.deps.Metrics.RecordSnapshotDropped("operator_limit")
		return err
	}
	if err != nil {
		r.deps.Metrics.RecordSnapshotDropped("closed")
		return err
	}

	select {
	case op.inbox <- s:
		r.deps.Metrics.RecordSnapshot(source)
		return nil
	case <-r.ctx.Done():
		r.deps.Metrics.RecordSnapshotDropped("closed")
		return ErrRegistryClosed
	case <-ctx.Done():
		r.deps.Metrics.RecordSnapshotDropped("timeout")
		return ctx.Err()
	}
}

func (r *Registry) get(operatorId string) (*operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRegistryClosed
	}
	if op, ok := r.operators[operatorId]; ok {
		return op, nil
	}
	if len(r.operators) >= r.maxOperators {
		return nil, ErrTooManyOperators
	}

	op := &operator{
		id:      operatorId,
		inbox:   make(chan buttons.Snapshot, r.inboxSize),
		handler: NewHandler(operatorId, r.deps),
	}
	r.operators[operatorId] = op
	r.deps.Metrics.OperatorsActive.Inc()

	r.wg.Add(1)
	go r.run(op)

	lg := logging.WithOperator(operatorId)
	lg.Info().Msg("Operator state machine started")
	return op, nil
}

func (r *Registry) run(op *operator) {
	defer r.wg.Done()
	defer r.deps.Metrics.OperatorsActive.Dec()

	err := buttons.Run(r.ctx, buttons.ChanSource(op.inbox), op.handler)
	if err != nil && !errors.Is(err, context.Canceled) {
		lg := logging.WithOperator(op.id)
		lg.Error().Err(err).Msg("Operator state machine stopped")
	}
}

// Status returns the status of one operator.
func (r *Registry) Status(operatorId string) (models.OperatorStatus, bool) {
	r.mu.Lock()
	op, ok := r.operators[operatorId]
	r.mu.Unlock()
	if !ok {
		return models.OperatorStatus{}, false
	}
	return op.handler.Status(), true
}

// Statuses returns every operator's status, ordered by operator id.
func (r *Registry) Statuses() []models.OperatorStatus {
	r.mu.Lock()
	ops := make([]*operator, 0, len(r.operators))
	for _, op := range r.operators {
		ops = append(ops, op)
	}
	r.mu.Unlock()

	sort.Slice(ops, func(i, j int) bool { return ops[i].id < ops[j].id })

	out := make([]models.OperatorStatus, 0, len(ops))
	for _, op := range ops {
		out = append(out, op.handler.Status())
	}
	return out
}

// Close stops every state machine and waits for them to exit.
// Snapshots still queued are discarded. Idempotent.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
	log.Info().Msg("Operator registry closed")
}

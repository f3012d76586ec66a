package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/md-rashed-zaman/apptintake/internal/model"
)

var (
	// ErrValidation marks a request rejected before any side effect.
	ErrValidation = errors.New("invalid appointment request")
	// ErrPersistence marks a request that could not be stored. Channels are
	// never attempted for an unpersisted appointment.
	ErrPersistence = errors.New("appointment not persisted")
)

// Store is the persistence gateway: insert one document of the given kind
// and return its identifier.
type Store interface {
	InsertDocument(ctx context.Context, kind string, doc any) (string, error)
}

// Channel is one optional outbound notification integration. Attempt is
// called at most once per submission and only when Configured reports true.
type Channel interface {
	Name() string
	Configured() bool
	Attempt(ctx context.Context, appt model.AppointmentRequest) (token string, err error)
}

// ChannelOutcome records what actually happened for one channel during one
// submission. Attempted stays false when the channel was not configured,
// which is the only case where the channel code never ran.
type ChannelOutcome struct {
	Attempted bool
	Succeeded bool
	Token     string
}

type Result struct {
	ID       string
	Sheets   ChannelOutcome
	WhatsApp ChannelOutcome
}

// Orchestrator runs one submission end to end: validate, persist, then
// best-effort fan-out to the configured channels. Channel failures only ever
// surface as outcome flags; validation and persistence failures abort.
type Orchestrator struct {
	store    Store
	sheets   Channel
	whatsapp Channel
	logger   *slog.Logger
	timeout  time.Duration
}

func NewOrchestrator(store Store, sheets, whatsapp Channel, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:    store,
		sheets:   sheets,
		whatsapp: whatsapp,
		logger:   logger,
		timeout:  10 * time.Second,
	}
}

// WithTimeout bounds each external call (persistence and every channel
// attempt) so one slow dependency cannot stall the request indefinitely.
func (o *Orchestrator) WithTimeout(d time.Duration) *Orchestrator {
	if d > 0 {
		o.timeout = d
	}
	return o
}

func (o *Orchestrator) Submit(ctx context.Context, appt model.AppointmentRequest) (Result, error) {
	if err := appt.Validate(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	insertCtx, cancel := context.WithTimeout(ctx, o.timeout)
	id, err := o.store.InsertDocument(insertCtx, model.KindAppointment, appt)
	cancel()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	// The two channels are independent: neither reads the other's outcome
	// and both only read the (immutable) appointment.
	res := Result{ID: id}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.Sheets = o.attempt(ctx, o.sheets, appt)
	}()
	go func() {
		defer wg.Done()
		res.WhatsApp = o.attempt(ctx, o.whatsapp, appt)
	}()
	wg.Wait()

	return res, nil
}

func (o *Orchestrator) attempt(ctx context.Context, ch Channel, appt model.AppointmentRequest) ChannelOutcome {
	if ch == nil || !ch.Configured() {
		if ch != nil && o.logger != nil {
			o.logger.Info("channel skipped (not configured)", "channel", ch.Name())
		}
		return ChannelOutcome{}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	token, err := ch.Attempt(attemptCtx, appt)
	if err != nil {
		if o.logger != nil {
			o.logger.Warn("channel delivery failed", "channel", ch.Name(), "err", err)
		}
		return ChannelOutcome{Attempted: true}
	}
	return ChannelOutcome{Attempted: true, Succeeded: true, Token: token}
}

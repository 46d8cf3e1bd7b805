package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/iho/goreporte/internal/domain"
)

// ErrSubmissionInFlight is returned when a submission is attempted while
// another one is still loading.
var ErrSubmissionInFlight = errors.New("a report query is already in progress")

// Fetcher retrieves the raw payload for a submission.
type Fetcher interface {
	FetchRaw(ctx context.Context, input QueryInput) (*domain.RawReportPayload, error)
}

// SessionState is the state of one submission surface. Values are never
// mutated; Update returns a new state.
type SessionState struct {
	Username   string
	Directorio string
	Anticipo   string

	Loading bool
	Error   string

	Payload *domain.RawReportPayload
	Report  *domain.Report

	seq uint64
}

// Event is an input to Update.
type Event interface {
	event()
}

// FieldsChanged replaces the form fields.
type FieldsChanged struct {
	Username   string
	Directorio string
	Anticipo   string
}

// ValidationFailed records a submission rejected before the query boundary.
type ValidationFailed struct {
	Message string
}

// SubmitStarted marks submission seq as in flight.
type SubmitStarted struct {
	Seq uint64
}

// SubmitSucceeded delivers the payload of submission seq.
type SubmitSucceeded struct {
	Seq     uint64
	Payload *domain.RawReportPayload
}

// SubmitFailed delivers the failure of submission seq.
type SubmitFailed struct {
	Seq     uint64
	Message string
}

// SubmitAbandoned drops the in-flight submission; its result will be ignored.
type SubmitAbandoned struct {
	Seq uint64
}

func (FieldsChanged) event()    {}
func (ValidationFailed) event() {}
func (SubmitStarted) event()    {}
func (SubmitSucceeded) event()  {}
func (SubmitFailed) event()     {}
func (SubmitAbandoned) event()  {}

// Update is the single transition function of a submission surface.
// Results of any submission other than the latest one are discarded.
func Update(s SessionState, ev Event) SessionState {
	switch e := ev.(type) {
	case FieldsChanged:
		advanceChanged := e.Anticipo != s.Anticipo
		s.Username = e.Username
		s.Directorio = e.Directorio
		s.Anticipo = e.Anticipo
		if advanceChanged && s.Payload != nil {
			s.Report = domain.ReconcilePayload(s.Payload, domain.ParseAdvance(s.Anticipo))
		}

	case ValidationFailed:
		s.Error = e.Message
		s.Payload = nil
		s.Report = nil

	case SubmitStarted:
		s.seq = e.Seq
		s.Loading = true
		s.Error = ""
		s.Payload = nil
		s.Report = nil

	case SubmitSucceeded:
		if e.Seq != s.seq || !s.Loading {
			return s
		}
		s.Loading = false
		if e.Payload == nil {
			s.Error = domain.DisplayMessage(domain.ErrReportNotFound)
			return s
		}
		s.Error = ""
		s.Payload = e.Payload
		s.Report = domain.ReconcilePayload(e.Payload, domain.ParseAdvance(s.Anticipo))

	case SubmitFailed:
		if e.Seq != s.seq || !s.Loading {
			return s
		}
		s.Loading = false
		s.Error = e.Message
		if s.Error == "" {
			s.Error = domain.DefaultQueryErrorMessage
		}
		s.Payload = nil
		s.Report = nil

	case SubmitAbandoned:
		if !s.Loading {
			return s
		}
		s.seq = e.Seq
		s.Loading = false
	}

	return s
}

// Session runs submission cycles against a Fetcher, one at a time.
type Session struct {
	mu      sync.Mutex
	state   SessionState
	nextSeq uint64
	fetcher Fetcher
}

// NewSession creates a new Session.
func NewSession(fetcher Fetcher) *Session {
	return &Session{fetcher: fetcher}
}

// State returns the current state snapshot.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetFields updates the form fields and returns the new state.
func (s *Session) SetFields(username, directorio, anticipo string) SessionState {
	return s.dispatch(FieldsChanged{
		Username:   username,
		Directorio: directorio,
		Anticipo:   anticipo,
	})
}

// Abandon stops waiting for the in-flight submission.
func (s *Session) Abandon() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq++
	s.state = Update(s.state, SubmitAbandoned{Seq: s.nextSeq})
	return s.state
}

// Submit runs one query and reconciliation cycle with the current fields.
// The returned state is the one produced by this cycle.
func (s *Session) Submit(ctx context.Context) (SessionState, error) {
	s.mu.Lock()
	if s.state.Loading {
		st := s.state
		s.mu.Unlock()
		return st, ErrSubmissionInFlight
	}

	if err := domain.ValidateQuery(s.state.Username, s.state.Directorio); err != nil {
		s.state = Update(s.state, ValidationFailed{Message: domain.DisplayMessage(err)})
		st := s.state
		s.mu.Unlock()
		return st, err
	}

	s.nextSeq++
	seq := s.nextSeq
	s.state = Update(s.state, SubmitStarted{Seq: seq})
	input := QueryInput{
		Username:   s.state.Username,
		Directorio: s.state.Directorio,
	}
	s.mu.Unlock()

	payload, err := s.fetcher.FetchRaw(ctx, input)
	if err != nil {
		return s.dispatch(SubmitFailed{Seq: seq, Message: domain.DisplayMessage(err)}), err
	}

	return s.dispatch(SubmitSucceeded{Seq: seq, Payload: payload}), nil
}

func (s *Session) dispatch(ev Event) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Update(s.state, ev)
	return s.state
}

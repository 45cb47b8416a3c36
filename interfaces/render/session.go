package render

import (
	"context"
	"errors"
	"sync"

	"casegraph/domain/casenet"
	pkgerrors "casegraph/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrStaleResponse is returned for a response that lost to a newer request
var ErrStaleResponse = errors.New("response superseded by a newer request")

// Status messages shown instead of the graph
const (
	MessageLoading = "Loading..."
	MessageNoData  = "No graph data available"
	MessageNoCase  = "Case not found"
)

// Loader fetches the case network for a case id
type Loader interface {
	CaseNetwork(ctx context.Context, caseID string) (casenet.GraphData, error)
}

// Status is the load state of a session
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusNotFound
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusNotFound:
		return "not_found"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Session binds a loader to a view. Only the response for the most recently
// requested case may reach the view; anything older is dropped.
type Session struct {
	id     string
	loader Loader
	view   *View
	logger *zap.Logger

	mu         sync.Mutex
	generation uint64
	caseID     string
	status     Status
	err        error
}

// NewSession creates a session with a fresh id
func NewSession(loader Loader, view *View, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	return &Session{
		id:     id,
		loader: loader,
		view:   view,
		logger: logger.With(zap.String("session", id)),
	}
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// View returns the view the session feeds
func (s *Session) View() *View {
	return s.view
}

// Load requests a case and commits the result if no newer request has started
// in the meantime. A superseded response returns ErrStaleResponse and leaves
// the view untouched.
func (s *Session) Load(ctx context.Context, caseID string) error {
	gen := s.begin(caseID)

	data, err := s.loader.CaseNetwork(ctx, caseID)

	return s.commit(gen, caseID, data, err)
}

func (s *Session) begin(caseID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.caseID = caseID
	s.status = StatusLoading
	s.err = nil
	return s.generation
}

func (s *Session) commit(gen uint64, caseID string, data casenet.GraphData, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || caseID != s.caseID {
		s.logger.Debug("Dropped stale case network response",
			zap.String("caseID", caseID),
			zap.String("currentCaseID", s.caseID),
		)
		return ErrStaleResponse
	}

	if err != nil {
		s.err = err
		if pkgerrors.IsNotFound(err) {
			s.status = StatusNotFound
		} else {
			s.status = StatusFailed
			s.logger.Warn("Failed to load case network",
				zap.String("caseID", caseID),
				zap.Error(err),
			)
		}
		return err
	}

	s.status = StatusReady
	s.view.SetData(data)
	return nil
}

// CaseID returns the most recently requested case
func (s *Session) CaseID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caseID
}

// Status returns the load state
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the error of the last committed load
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Message is the text shown in place of the graph, or "" when the graph
// should be painted. Raw error detail is never part of it.
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusLoading:
		return MessageLoading
	case StatusNotFound:
		return MessageNoCase
	case StatusFailed:
		return MessageNoData
	case StatusReady:
		if s.view.Data().IsEmpty() {
			return MessageNoData
		}
		return ""
	default:
		return MessageNoData
	}
}

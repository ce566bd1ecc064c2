package client

import (
	"context"
	"errors"
	"sync"
)

// PageSize is the number of predictions requested per page
const PageSize = 10

// MsgFetchFailed is the error shown when a predictions page cannot be loaded
const MsgFetchFailed = "Failed to fetch predictions."

// ErrSuperseded is returned by Fetch when a newer fetch started before this one finished
var ErrSuperseded = errors.New("superseded by a newer fetch")

// PredictionsLister is the subset of the API used by PredictionsQuery
type PredictionsLister interface {
	ListPredictions(ctx context.Context, p ListParams) (*PredictionsPage, error)
}

// QueryState is what a predictions view renders
type QueryState struct {
	Params      ListParams
	Predictions []Prediction
	TotalPages  int
	Error       string
	Loading     bool
}

// PredictionsQuery holds the latest predictions page. Only the newest fetch may update it.
type PredictionsQuery struct {
	api PredictionsLister

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	state      QueryState
}

// NewPredictionsQuery creates an empty query
func NewPredictionsQuery(api PredictionsLister) *PredictionsQuery {
	return &PredictionsQuery{
		api:   api,
		state: QueryState{Predictions: []Prediction{}, TotalPages: 1},
	}
}

// Fetch loads the page selected by params and applies it unless a newer fetch has started,
// in which case ErrSuperseded is returned. A failed fetch clears the results and sets Error.
func (q *PredictionsQuery) Fetch(ctx context.Context, params ListParams) error {
	if params.Page < 1 {
		params.Page = 1
	}
	params.Limit = PageSize

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	q.mu.Lock()
	if q.cancel != nil {
		q.cancel()
	}
	q.generation++
	gen := q.generation
	q.cancel = cancel
	q.state.Params = params
	q.state.Loading = true
	q.mu.Unlock()

	page, err := q.api.ListPredictions(ctx, params)

	q.mu.Lock()
	defer q.mu.Unlock()
	if gen != q.generation {
		return ErrSuperseded
	}
	q.cancel = nil
	q.state.Loading = false

	if err != nil {
		q.state.Predictions = []Prediction{}
		q.state.TotalPages = 1
		q.state.Error = MsgFetchFailed
		return err
	}

	q.state.Predictions = page.Predictions
	if q.state.Predictions == nil {
		q.state.Predictions = []Prediction{}
	}
	q.state.TotalPages = page.TotalPages
	q.state.Error = ""
	return nil
}

// Snapshot returns a copy of the current state
func (q *PredictionsQuery) Snapshot() QueryState {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := q.state
	s.Predictions = append([]Prediction(nil), q.state.Predictions...)
	if s.Predictions == nil {
		s.Predictions = []Prediction{}
	}
	return s
}

package discovery

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const DefaultFetchTimeout = 5 * time.Second

type Options struct {
	Fitter       FitterOptions
	Breakpoint   int
	FetchTimeout time.Duration
	Logger       *slog.Logger
}

// ViewportState is the camera as handed to the map surface.
type ViewportState struct {
	Viewport
	AnimationMS int64 `json:"animation_ms"`
	Moved       bool  `json:"moved"`
}

// Snapshot is everything a renderer needs after a state change.
type Snapshot struct {
	Revision          uint64         `json:"revision"`
	VisibleStudios    []*Studio      `json:"visible_studios"`
	ResultCount       int            `json:"result_count"`
	Status            ResultStatus   `json:"status"`
	Retryable         bool           `json:"retryable"`
	Error             string         `json:"error,omitempty"`
	ErrorKind         FetchErrorKind `json:"error_kind,omitempty"`
	Viewport          ViewportState  `json:"viewport"`
	Markers           []Marker       `json:"markers"`
	MarkerDiff        MarkerDiff     `json:"marker_diff"`
	Selection         Selection      `json:"selection"`
	ViewMode          ViewMode       `json:"view_mode"`
	ActiveFilterCount int            `json:"active_filter_count"`
	Filters           FilterState    `json:"filters"`
	Query             QueryParams    `json:"query"`
	Sort              SortKey        `json:"sort"`
	Headline          string         `json:"headline"`
	Subheadline       string         `json:"subheadline"`
}

// Engine coordinates one search session. All mutation goes through its
// methods, which serialize on a single lock; only the catalog call runs
// outside it.
type Engine struct {
	mu      sync.Mutex
	catalog Catalog
	log     *slog.Logger
	timeout time.Duration

	filters   *FilterStore
	selection *SelectionCoordinator
	viewMode  *ViewModeController
	fitter    *Fitter
	markers   *MarkerSet
	seq       FetchSequencer

	query    QueryParams
	fetched  QueryParams // query the current studios were fetched for
	sortKey  SortKey
	studios  []*Studio
	visible  []*Studio
	status   ResultStatus
	fetchErr *FetchError

	revision    uint64
	lastDiff    MarkerDiff
	cameraMoved bool

	subscribers map[int]func(Snapshot)
	nextSubID   int
	closed      bool
	done        chan struct{}
}

func NewEngine(catalog Catalog, opts Options) *Engine {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	e := &Engine{
		catalog:     catalog,
		log:         opts.Logger,
		timeout:     opts.FetchTimeout,
		selection:   NewSelectionCoordinator(),
		fitter:      NewFitter(opts.Fitter),
		markers:     NewMarkerSet(),
		sortKey:     SortNone,
		status:      StatusIdle,
		subscribers: make(map[int]func(Snapshot)),
		done:        make(chan struct{}),
	}
	e.viewMode = NewViewModeController(opts.Breakpoint, e.fitter.Container().Width)
	e.filters = NewFilterStore(func(FilterState) { e.refresh() })
	return e
}

// Search submits a query and waits for the catalog. The response is applied
// only if no later Search was issued meanwhile; applied reports that.
func (e *Engine) Search(ctx context.Context, q QueryParams) (snap Snapshot, applied bool) {
	e.mu.Lock()
	if e.closed {
		defer e.mu.Unlock()
		return e.snapshotLocked(), false
	}
	seq := e.seq.Next()
	e.query = q
	e.status = StatusLoading
	e.fetchErr = nil
	e.resetTransition()
	e.publishLocked()
	e.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
	studios, err := e.catalog.FetchStudios(fetchCtx, q)
	cancel()

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.seq.Current(seq) {
		e.log.Debug("discarding stale catalog response", "seq", seq, "latest", e.seq.Latest())
		return e.snapshotLocked(), false
	}
	if err != nil {
		e.fetchErr = ClassifyFetchError(err)
		e.studios = nil
		e.log.Warn("catalog fetch failed", "kind", e.fetchErr.Kind, "query", q.Encode(), "error", err)
	} else {
		e.fetchErr = nil
		e.studios = studios
	}
	e.fetched = q
	e.status = StatusReady
	e.resetTransition()
	e.refresh()
	return e.publishLocked(), true
}

// Retry repeats the last query.
func (e *Engine) Retry(ctx context.Context) (Snapshot, bool) {
	e.mu.Lock()
	q := e.query
	e.mu.Unlock()
	return e.Search(ctx, q)
}

// Dispatch applies a filter action.
func (e *Engine) Dispatch(action FilterAction) Snapshot {
	return e.mutate(func() bool { return e.filters.Dispatch(action) })
}

func (e *Engine) SetSort(key SortKey) Snapshot {
	return e.mutate(func() bool {
		if key == e.sortKey {
			return false
		}
		e.sortKey = key
		e.refresh()
		return true
	})
}

// Hover highlights a visible studio unless a click selection is held.
func (e *Engine) Hover(id string, source SelectionSource) Snapshot {
	return e.mutate(func() bool {
		if !e.isVisible(id) {
			return false
		}
		return e.selection.Hover(id, source) && e.highlight()
	})
}

func (e *Engine) HoverEnd(id string) Snapshot {
	return e.mutate(func() bool {
		return e.selection.HoverEnd(id) && e.highlight()
	})
}

// Click selects a visible studio. A click on a map marker also centers the
// camera on it.
func (e *Engine) Click(id string, source SelectionSource) Snapshot {
	return e.mutate(func() bool {
		studio := e.findVisible(id)
		if studio == nil {
			return false
		}
		changed := e.selection.Click(id, source)
		if changed {
			e.highlight()
		}
		if source == SourceMap {
			before := e.fitter.Viewport()
			e.cameraMoved = e.fitter.Focus(studio) != before
			changed = changed || e.cameraMoved
		}
		return changed
	})
}

func (e *Engine) ClearSelection() Snapshot {
	return e.mutate(func() bool {
		return e.selection.Clear() && e.highlight()
	})
}

// Resize reports a new container size for the map and list surfaces.
func (e *Engine) Resize(size Size) Snapshot {
	return e.mutate(func() bool {
		_, modeChanged := e.viewMode.Resize(size.Width)
		_, moved := e.fitter.Resize(size, e.visible)
		e.cameraMoved = moved
		return modeChanged || moved
	})
}

func (e *Engine) SetViewMode(mode ViewMode) Snapshot {
	return e.mutate(func() bool {
		_, changed := e.viewMode.Override(mode)
		return changed
	})
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every change. fn runs
// with the engine locked, so it must not block or call back into the engine.
func (e *Engine) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	_, unsubscribe = e.SubscribeWithSnapshot(fn)
	return unsubscribe
}

// SubscribeWithSnapshot registers fn and returns the current snapshot taken
// under the same lock, so fn only ever sees later revisions.
func (e *Engine) SubscribeWithSnapshot(fn func(Snapshot)) (current Snapshot, unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	current = e.snapshotLocked()
	id := e.nextSubID
	e.nextSubID++
	e.subscribers[id] = fn
	return current, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subscribers, id)
	}
}

// Close ends the session. In-flight fetches are discarded when they return.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.seq.Next()
	e.subscribers = make(map[int]func(Snapshot))
	close(e.done)
}

// Done is closed once the engine is closed.
func (e *Engine) Done() <-chan struct{} { return e.done }

func (e *Engine) mutate(fn func() bool) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return e.snapshotLocked()
	}
	e.resetTransition()
	if !fn() {
		return e.snapshotLocked()
	}
	return e.publishLocked()
}

func (e *Engine) resetTransition() {
	e.lastDiff = MarkerDiff{}
	e.cameraMoved = false
}

// refresh recomputes the visible set and everything derived from it.
func (e *Engine) refresh() {
	e.visible = SelectSorted(e.studios, e.filters.State(), e.fetched, e.sortKey)
	_, moved := e.fitter.Fit(e.visible)
	e.cameraMoved = e.cameraMoved || moved
	e.selection.Reconcile(e.visible)
	e.lastDiff = e.markers.Reconcile(e.visible, e.selection.Current().StudioID)
}

func (e *Engine) highlight() bool {
	e.lastDiff = e.lastDiff.merge(e.markers.Highlight(e.selection.Current().StudioID))
	return true
}

func (e *Engine) isVisible(id string) bool {
	return e.findVisible(id) != nil
}

func (e *Engine) findVisible(id string) *Studio {
	for _, s := range e.visible {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (e *Engine) publishLocked() Snapshot {
	e.revision++
	snap := e.snapshotLocked()
	for _, fn := range e.subscribers {
		fn(snap)
	}
	return snap
}

func (e *Engine) snapshotLocked() Snapshot {
	filters := e.filters.State()
	snap := Snapshot{
		Revision:       e.revision,
		VisibleStudios: append([]*Studio{}, e.visible...),
		ResultCount:    len(e.visible),
		Status:         e.resultStatus(),
		Viewport: ViewportState{
			Viewport:    e.fitter.Viewport(),
			AnimationMS: e.fitter.AnimationDuration().Milliseconds(),
			Moved:       e.cameraMoved,
		},
		Markers:           e.markers.Markers(),
		MarkerDiff:        e.lastDiff,
		Selection:         e.selection.Current(),
		ViewMode:          e.viewMode.Mode(),
		ActiveFilterCount: ActiveFilterCount(filters),
		Filters:           filters,
		Query:             e.query,
		Sort:              e.sortKey,
		Headline:          e.query.Headline(),
		Subheadline:       e.query.Subheadline(),
	}
	if e.fetchErr != nil {
		snap.Retryable = e.fetchErr.Retryable()
		snap.Error = e.fetchErr.Error()
		snap.ErrorKind = e.fetchErr.Kind
	}
	return snap
}

func (e *Engine) resultStatus() ResultStatus {
	switch {
	case e.status == StatusIdle || e.status == StatusLoading:
		return e.status
	case e.fetchErr != nil:
		return StatusErrored
	case len(e.visible) == 0:
		return StatusNoMatches
	default:
		return StatusReady
	}
}

package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoadedEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(staticCatalog(sampleStudios()), Options{})
	snap, applied := e.Search(context.Background(), QueryParams{})
	require.True(t, applied)
	require.Equal(t, StatusReady, snap.Status)
	return e
}

func TestEngine_InitialSnapshot(t *testing.T) {
	e := NewEngine(staticCatalog(nil), Options{})
	snap := e.Snapshot()

	assert.Equal(t, StatusIdle, snap.Status)
	assert.Equal(t, ViewSplit, snap.ViewMode)
	assert.Equal(t, DefaultCenter, snap.Viewport.Center)
	assert.Equal(t, int64(1000), snap.Viewport.AnimationMS)
	assert.Equal(t, "All Studios", snap.Headline)
	assert.Equal(t, SortNone, snap.Sort)
	assert.True(t, snap.Selection.Empty())
}

func TestEngine_SearchPopulatesEverySurface(t *testing.T) {
	e := NewEngine(staticCatalog(sampleStudios()), Options{})

	snap, applied := e.Search(context.Background(), QueryParams{})

	require.True(t, applied)
	assert.Equal(t, 8, snap.ResultCount)
	assert.Len(t, snap.Markers, 8)
	assert.Len(t, snap.MarkerDiff.Added, 8)
	assert.True(t, snap.Viewport.Moved)
	for _, s := range snap.VisibleStudios {
		assert.True(t, snap.Viewport.Bounds.Contains(s.Coordinates))
	}
}

func TestEngine_PriceFilterScenario(t *testing.T) {
	e := newLoadedEngine(t)

	snap := e.Dispatch(SetPriceMax(50))

	assert.Equal(t, []string{"1", "3", "6", "8"}, ids(snap.VisibleStudios))
	assert.Equal(t, 1, snap.ActiveFilterCount)
	assert.ElementsMatch(t, []string{"2", "4", "5", "7"}, snap.MarkerDiff.Removed)
	assert.Empty(t, snap.MarkerDiff.Added)
	assert.True(t, snap.Viewport.Moved)
}

func TestEngine_NoOpFilterDoesNotPublish(t *testing.T) {
	e := newLoadedEngine(t)
	var pushes int
	e.Subscribe(func(Snapshot) { pushes++ })

	before := e.Snapshot().Revision
	snap := e.Dispatch(SetInstantBook(false))

	assert.Equal(t, before, snap.Revision)
	assert.Zero(t, pushes)
}

func TestEngine_SelectionClearedWhenStudioLeaves(t *testing.T) {
	e := newLoadedEngine(t)

	snap := e.Click("7", SourceList)
	require.Equal(t, "7", snap.Selection.StudioID)

	snap = e.Dispatch(SetPriceMax(50))
	assert.True(t, snap.Selection.Empty())
	assert.Equal(t, SourceNone, snap.Selection.Source)
}

func TestEngine_SelectionKeptWhenStudioStays(t *testing.T) {
	e := newLoadedEngine(t)
	e.Hover("3", SourceList)

	snap := e.Dispatch(SetPriceMax(50))

	assert.Equal(t, "3", snap.Selection.StudioID)
	for _, m := range snap.Markers {
		assert.Equal(t, m.StudioID == "3", m.Selected, "marker %s", m.StudioID)
	}
}

func TestEngine_ListHoverHighlightsMarker(t *testing.T) {
	e := newLoadedEngine(t)

	snap := e.Hover("4", SourceList)
	require.Len(t, snap.MarkerDiff.Updated, 1)
	assert.Equal(t, "4", snap.MarkerDiff.Updated[0].StudioID)
	assert.True(t, snap.MarkerDiff.Updated[0].Selected)

	snap = e.HoverEnd("4")
	assert.True(t, snap.Selection.Empty())
	require.Len(t, snap.MarkerDiff.Updated, 1)
	assert.False(t, snap.MarkerDiff.Updated[0].Selected)
}

func TestEngine_MarkerClickFocusesCamera(t *testing.T) {
	e := newLoadedEngine(t)

	snap := e.Click("5", SourceMap)

	assert.Equal(t, Selection{StudioID: "5", Source: SourceMap, Origin: OriginClick}, snap.Selection)
	assert.Equal(t, FocusZoom, snap.Viewport.Zoom)
	assert.True(t, snap.Viewport.Moved)

	snap = e.Hover("1", SourceList)
	assert.Equal(t, "5", snap.Selection.StudioID, "hover does not override a click")
}

func TestEngine_SelectingInvisibleStudioIsIgnored(t *testing.T) {
	e := newLoadedEngine(t)
	e.Dispatch(SetPriceMax(50))

	snap := e.Click("7", SourceMap)
	assert.True(t, snap.Selection.Empty())
	snap = e.Hover("7", SourceList)
	assert.True(t, snap.Selection.Empty())
}

func TestEngine_LastRequestWins(t *testing.T) {
	catalog := newGatedCatalog()
	e := NewEngine(catalog, Options{FetchTimeout: 5 * time.Second})
	all := sampleStudios()

	type result struct {
		snap    Snapshot
		applied bool
	}
	resA := make(chan result, 1)
	resB := make(chan result, 1)

	go func() {
		s, ok := e.Search(context.Background(), QueryParams{Location: "Manhattan"})
		resA <- result{s, ok}
	}()
	<-catalog.started

	go func() {
		s, ok := e.Search(context.Background(), QueryParams{Location: "Soho"})
		resB <- result{s, ok}
	}()
	<-catalog.started

	catalog.gate("Soho") <- fetchResult{studios: []*Studio{all[1], all[6]}}
	b := <-resB
	require.True(t, b.applied)

	catalog.gate("Manhattan") <- fetchResult{studios: all[:3]}
	a := <-resA
	assert.False(t, a.applied)

	final := e.Snapshot()
	assert.Equal(t, "Soho", final.Query.Location)
	assert.Equal(t, []string{"7"}, ids(final.VisibleStudios))
	assert.Equal(t, b.snap.Revision, final.Revision)
}

func TestEngine_RefetchRefreshesMarkerOfSameStudio(t *testing.T) {
	price := 35.0
	catalog := CatalogFunc(func(context.Context, QueryParams) ([]*Studio, error) {
		s := *sampleStudios()[0]
		s.PricePerHour = price
		return []*Studio{&s}, nil
	})
	e := NewEngine(catalog, Options{})
	first, _ := e.Search(context.Background(), QueryParams{})
	require.Equal(t, "$35", first.Markers[0].Label)

	price = 99
	snap, applied := e.Search(context.Background(), QueryParams{})

	require.True(t, applied)
	assert.Equal(t, 99.0, snap.VisibleStudios[0].PricePerHour)
	assert.Equal(t, "$99", snap.Markers[0].Label)
	require.Len(t, snap.MarkerDiff.Updated, 1)
	assert.Equal(t, "$99", snap.MarkerDiff.Updated[0].Label)
	assert.Empty(t, snap.MarkerDiff.Added)
}

func TestEngine_SubscribeWithSnapshotSeesOnlyLaterRevisions(t *testing.T) {
	e := newLoadedEngine(t)
	var got []uint64
	current, unsubscribe := e.SubscribeWithSnapshot(func(s Snapshot) { got = append(got, s.Revision) })
	defer unsubscribe()

	assert.Equal(t, e.Snapshot().Revision, current.Revision)
	next := e.Dispatch(SetPriceMax(50))

	require.Equal(t, []uint64{next.Revision}, got)
	assert.Greater(t, next.Revision, current.Revision)
}

func TestEngine_PreviousResultsStayVisibleWhileLoading(t *testing.T) {
	catalog := newGatedCatalog()
	e := NewEngine(catalog, Options{})
	all := sampleStudios()

	catalog.gate("") <- fetchResult{studios: all}
	_, applied := e.Search(context.Background(), QueryParams{})
	require.True(t, applied)
	<-catalog.started

	done := make(chan Snapshot, 1)
	go func() {
		snap, _ := e.Search(context.Background(), QueryParams{Location: "Brooklyn"})
		done <- snap
	}()
	<-catalog.started

	loading := e.Snapshot()
	assert.Equal(t, StatusLoading, loading.Status)
	assert.Equal(t, "Brooklyn", loading.Query.Location)
	assert.Len(t, loading.VisibleStudios, 8)
	assert.Len(t, loading.Markers, 8)

	catalog.gate("Brooklyn") <- fetchResult{studios: all}
	final := <-done
	assert.Equal(t, StatusReady, final.Status)
	assert.Equal(t, []string{"1"}, ids(final.VisibleStudios))
}

func TestEngine_StaleResponseDiscardedScenario(t *testing.T) {
	catalog := newGatedCatalog()
	e := NewEngine(catalog, Options{})
	all := sampleStudios()

	done := make(chan bool, 2)
	go func() {
		_, ok := e.Search(context.Background(), QueryParams{Location: "NY"})
		done <- ok
	}()
	<-catalog.started
	go func() {
		_, ok := e.Search(context.Background(), QueryParams{Location: "Brooklyn"})
		done <- ok
	}()
	<-catalog.started

	catalog.gate("Brooklyn") <- fetchResult{studios: all[:1]}
	require.True(t, <-done)
	catalog.gate("NY") <- fetchResult{studios: all}
	require.False(t, <-done)

	snap := e.Snapshot()
	assert.Equal(t, []string{"1"}, ids(snap.VisibleStudios))
	assert.Equal(t, StatusReady, snap.Status)
}

func TestEngine_FetchErrorIsDistinctFromNoMatches(t *testing.T) {
	failing := CatalogFunc(func(context.Context, QueryParams) ([]*Studio, error) {
		return nil, errors.New("connection refused")
	})
	e := NewEngine(failing, Options{})

	snap, applied := e.Search(context.Background(), QueryParams{})

	require.True(t, applied)
	assert.Equal(t, StatusErrored, snap.Status)
	assert.True(t, snap.Retryable)
	assert.Equal(t, FetchUnavailable, snap.ErrorKind)
	assert.Zero(t, snap.ResultCount)

	ok := newLoadedEngine(t)
	snap = ok.Dispatch(SetPriceMax(10))
	assert.Equal(t, StatusNoMatches, snap.Status)
	assert.False(t, snap.Retryable)
	assert.Empty(t, snap.Error)
}

func TestEngine_FetchTimeout(t *testing.T) {
	slow := CatalogFunc(func(ctx context.Context, _ QueryParams) ([]*Studio, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	e := NewEngine(slow, Options{FetchTimeout: 10 * time.Millisecond})

	snap, _ := e.Search(context.Background(), QueryParams{})

	assert.Equal(t, StatusErrored, snap.Status)
	assert.Equal(t, FetchTimeout, snap.ErrorKind)
}

func TestEngine_RetryAfterError(t *testing.T) {
	calls := 0
	flaky := CatalogFunc(func(context.Context, QueryParams) ([]*Studio, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("boom")
		}
		return sampleStudios(), nil
	})
	e := NewEngine(flaky, Options{})

	snap, _ := e.Search(context.Background(), QueryParams{Location: "Harlem"})
	require.Equal(t, StatusErrored, snap.Status)

	snap, applied := e.Retry(context.Background())
	require.True(t, applied)
	assert.Equal(t, StatusReady, snap.Status)
	assert.Equal(t, []string{"8"}, ids(snap.VisibleStudios))
	assert.Equal(t, "Studios in Harlem", snap.Headline)
}

func TestEngine_ViewModeScenario(t *testing.T) {
	e := NewEngine(staticCatalog(nil), Options{Fitter: FitterOptions{Container: Size{Width: 1024, Height: 768}}})

	snap := e.SetViewMode(ViewMap)
	require.Equal(t, ViewMap, snap.ViewMode)

	snap = e.Resize(Size{Width: 600, Height: 800})
	assert.Equal(t, ViewList, snap.ViewMode)
}

func TestEngine_SortKeepsSelectionAndMarkers(t *testing.T) {
	e := newLoadedEngine(t)
	e.Click("2", SourceList)

	snap := e.SetSort(SortPriceAsc)

	assert.Equal(t, []string{"1", "3", "8", "6", "4", "5", "2", "7"}, ids(snap.VisibleStudios))
	assert.Equal(t, "2", snap.Selection.StudioID)
	assert.True(t, snap.MarkerDiff.Empty())
	assert.False(t, snap.Viewport.Moved, "reordering leaves the camera where it was")
}

func TestEngine_SubscribeAndClose(t *testing.T) {
	e := newLoadedEngine(t)
	var revisions []uint64
	unsubscribe := e.Subscribe(func(s Snapshot) { revisions = append(revisions, s.Revision) })

	e.Dispatch(ToggleEquipment("KRK"))
	e.Dispatch(ClearFilters())
	unsubscribe()
	e.Dispatch(SetInstantBook(true))

	require.Len(t, revisions, 2)
	assert.Less(t, revisions[0], revisions[1])

	e.Close()
	e.Close()
	select {
	case <-e.Done():
	default:
		t.Fatal("Done not closed")
	}
	snap, applied := e.Search(context.Background(), QueryParams{})
	assert.False(t, applied)
	assert.Equal(t, snap.Revision, e.Dispatch(SetPriceMax(10)).Revision)
}

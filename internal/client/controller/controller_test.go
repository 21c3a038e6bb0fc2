package controller

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/team-dbx/dbx/internal/client/notify"
	"github.com/team-dbx/dbx/internal/client/state"
	"github.com/team-dbx/dbx/internal/dto"
)

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

// fakeAPI is an in-memory backing store with optional gates that hold a
// category's resource read until the test releases it.
type fakeAPI struct {
	mu sync.Mutex

	categories    []dto.Category
	categoriesErr error
	categoryCalls int

	store        map[string][]dto.ResourceSummary
	resourceErr  map[string]error
	resourceGate map[string]chan struct{}
	listCalls    []string

	details     map[string]*dto.ResourceDetail
	detailErr   error
	detailCalls []string
	detailGate  map[string]chan struct{}

	deleteResult string
	deleteErr    error
	deleteCalls  []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		categories: []dto.Category{
			{ID: "c1", Name: "BrandLogo"},
			{ID: "c2", Name: "Icons"},
		},
		store: map[string][]dto.ResourceSummary{
			"c1": {{ID: "R41", SvgURL: "https://cdn/41.svg"}, {ID: "R42", SvgURL: "https://cdn/42.svg"}},
			"c2": {{ID: "I1", SvgURL: "https://cdn/i1.svg"}},
		},
		resourceErr:  map[string]error{},
		resourceGate: map[string]chan struct{}{},
		detailGate:   map[string]chan struct{}{},
		details: map[string]*dto.ResourceDetail{
			"R41": {ResourceName: "dbx logo", Version: "1.0.0"},
			"R42": {ResourceName: "dbx mark", Version: "2.0.0"},
		},
		deleteResult: "OK",
	}
}

func (f *fakeAPI) CategoriesURL() string { return "https://api/categories" }

func (f *fakeAPI) FetchCategories(ctx context.Context, url string) ([]dto.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categoryCalls++
	if f.categoriesErr != nil {
		return nil, f.categoriesErr
	}
	return slices.Clone(f.categories), nil
}

func (f *fakeAPI) hold(categoryID string) chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	f.resourceGate[categoryID] = ch
	f.mu.Unlock()
	return ch
}

func (f *fakeAPI) CategoryResources(ctx context.Context, categoryID string) ([]dto.ResourceSummary, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, categoryID)
	gate := f.resourceGate[categoryID]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.resourceErr[categoryID]; err != nil {
		return nil, err
	}
	return slices.Clone(f.store[categoryID]), nil
}

// holdDetail blocks the detail read of resourceID until the returned
// channel is closed.
func (f *fakeAPI) holdDetail(resourceID string) chan struct{} {
	ch := make(chan struct{})
	f.mu.Lock()
	f.detailGate[resourceID] = ch
	f.mu.Unlock()
	return ch
}

func (f *fakeAPI) detailReads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.detailCalls)
}

func (f *fakeAPI) Resource(ctx context.Context, categoryID, resourceID string) (*dto.ResourceDetail, error) {
	f.mu.Lock()
	f.detailCalls = append(f.detailCalls, categoryID+"/"+resourceID)
	gate := f.detailGate[resourceID]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	return f.details[resourceID], nil
}

func (f *fakeAPI) DeleteResource(ctx context.Context, categoryID, resourceID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, categoryID+"/"+resourceID)
	if f.deleteErr != nil {
		return "", f.deleteErr
	}
	if f.deleteResult == "OK" {
		f.store[categoryID] = slices.DeleteFunc(f.store[categoryID], func(r dto.ResourceSummary) bool {
			return r.ID == resourceID
		})
	}
	return f.deleteResult, nil
}

func (f *fakeAPI) lists() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.listCalls)
}

type fixture struct {
	api      *fakeAPI
	registry *state.CategoryRegistry
	session  *state.Session
	notes    *notify.Recorder
	ctl      *ResourceList
}

func newFixture() *fixture {
	f := &fixture{
		api:      newFakeAPI(),
		registry: state.NewCategoryRegistry(),
		session:  state.NewSession(),
		notes:    &notify.Recorder{},
	}
	f.ctl = NewResourceList(f.api, f.registry, f.session, f.notes)
	return f
}

func ids(rs []dto.ResourceSummary) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestOpen_EmptyRegistryLoadsCategoriesThenResources(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.ctl.Open(context.Background(), "BrandLogo"))

	assert.Equal(t, f.api.categories, f.registry.Read())
	assert.Equal(t, []string{"c1"}, f.api.lists())
	assert.Equal(t, "c1", f.session.Read().ActiveCategoryID)

	v := f.ctl.View()
	assert.Equal(t, ResourcesReady, v.State)
	assert.Equal(t, "c1", v.CategoryID)
	assert.Equal(t, []string{"R41", "R42"}, ids(v.Resources))
	assert.Equal(t, []string{"https://cdn/41.svg", "https://cdn/42.svg"}, v.URLs)
	assert.Empty(t, f.notes.Messages())
}

func TestOpen_EmptyNameMeansDefaultCategory(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.ctl.Open(context.Background(), ""))
	assert.Equal(t, "BrandLogo", f.ctl.View().Route)
	assert.Equal(t, []string{"c1"}, f.api.lists())
}

func TestOpen_FilledRegistrySkipsCategoriesFetch(t *testing.T) {
	f := newFixture()
	f.registry.ReplaceAll([]dto.Category{{ID: "c2", Name: "Icons"}})

	require.NoError(t, f.ctl.Open(context.Background(), "Icons"))
	assert.Zero(t, f.api.categoryCalls)
	assert.Equal(t, []string{"c2"}, f.api.lists())
}

func TestOpen_CategoriesFailureStaysIdleAndNotifies(t *testing.T) {
	f := newFixture()
	f.api.categoriesErr = errors.New("boom")

	err := f.ctl.Open(context.Background(), "BrandLogo")
	require.Error(t, err)

	assert.Equal(t, Idle, f.ctl.View().State)
	assert.True(t, f.registry.Empty())
	assert.Empty(t, f.api.lists())
	assert.Equal(t, []string{LoadErrorMessage}, f.notes.Errors())

	// a later open asks again
	f.api.categoriesErr = nil
	require.NoError(t, f.ctl.Open(context.Background(), "BrandLogo"))
	assert.Equal(t, 2, f.api.categoryCalls)
	assert.Equal(t, ResourcesReady, f.ctl.View().State)
}

func TestOpen_UnknownCategoryNeverFetchesResources(t *testing.T) {
	for _, name := range []string{"Nope", "brandlogo", " BrandLogo"} {
		t.Run(name, func(t *testing.T) {
			f := newFixture()

			err := f.ctl.Open(context.Background(), name)
			require.ErrorIs(t, err, ErrCategoryNotFound)

			assert.Empty(t, f.api.lists())
			v := f.ctl.View()
			assert.Equal(t, CategoryNotFound, v.State)
			assert.Empty(t, v.CategoryID)
			assert.Len(t, f.notes.Errors(), 1)
		})
	}
}

func TestOpen_ResourceFailureKeepsPriorList(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.ctl.Open(ctx, "BrandLogo"))

	f.api.mu.Lock()
	f.api.resourceErr["c1"] = errors.New("503")
	f.api.mu.Unlock()

	require.Error(t, f.ctl.Refresh(ctx))
	v := f.ctl.View()
	assert.Equal(t, ResourcesReady, v.State)
	assert.Equal(t, []string{"R41", "R42"}, ids(v.Resources))
	assert.Equal(t, []string{LoadErrorMessage}, f.notes.Errors())
}

func TestOpen_StaleCategoryResponseIsDiscarded(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.registry.ReplaceAll(f.api.categories)
	gate := f.api.hold("c1")

	firstDone := make(chan error, 1)
	go func() { firstDone <- f.ctl.Open(ctx, "BrandLogo") }()

	require.Eventually(t, func() bool { return slices.Contains(f.api.lists(), "c1") }, timeout, tick)

	require.NoError(t, f.ctl.Open(ctx, "Icons"))
	close(gate)
	require.NoError(t, <-firstDone)

	v := f.ctl.View()
	assert.Equal(t, "Icons", v.Route)
	assert.Equal(t, "c2", v.CategoryID)
	assert.Equal(t, []string{"I1"}, ids(v.Resources))
	assert.Equal(t, ResourcesReady, v.State)
	assert.Equal(t, "c2", f.session.Read().ActiveCategoryID)
}

func TestOpen_ConcurrentOpensShareOneCategoriesRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.ctl.Open(ctx, "BrandLogo")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.api.categoryCalls)
	assert.Equal(t, "c1", f.ctl.View().CategoryID)
}

func TestSelectThenDeselectClearsIDAndDetail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.ctl.Open(ctx, "BrandLogo"))

	require.NoError(t, f.ctl.Select(ctx, "R41"))
	sel := f.ctl.View().Selection
	assert.Equal(t, "R41", sel.ResourceID)
	assert.Equal(t, "c1", sel.CategoryID)
	require.NotNil(t, sel.Detail)
	assert.Equal(t, "dbx logo", sel.Detail.ResourceName)
	assert.Equal(t, []string{"c1/R41"}, f.api.detailCalls)

	require.NoError(t, f.ctl.Select(ctx, ""))
	sel = f.ctl.View().Selection
	assert.Empty(t, sel.ResourceID)
	assert.Nil(t, sel.Detail)
	assert.Len(t, f.api.detailCalls, 1)

	require.NoError(t, f.ctl.Select(ctx, "R42"))
	f.ctl.Deselect()
	assert.Equal(t, Selection{}, f.ctl.View().Selection)
}

func TestSelect_FailureKeepsPreviousSelection(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.ctl.Open(ctx, "BrandLogo"))
	require.NoError(t, f.ctl.Select(ctx, "R41"))

	f.api.detailErr = errors.New("boom")
	require.Error(t, f.ctl.Select(ctx, "R42"))

	sel := f.ctl.View().Selection
	assert.Equal(t, "R41", sel.ResourceID)
	assert.NotNil(t, sel.Detail)
	assert.Equal(t, []string{LoadErrorMessage}, f.notes.Errors())
}

func TestSelect_WithoutCategory(t *testing.T) {
	f := newFixture()
	assert.ErrorIs(t, f.ctl.Select(context.Background(), "R1"), ErrNoCategory)
	assert.Empty(t, f.api.detailCalls)
}

func TestSwitchingCategoryClearsSelection(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.ctl.Open(ctx, "BrandLogo"))
	require.NoError(t, f.ctl.Select(ctx, "R41"))

	require.NoError(t, f.ctl.Open(ctx, "Icons"))
	assert.Equal(t, Selection{}, f.ctl.View().Selection)
}

func TestDelete_OKRefetchesAndResourceIsGone(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.ctl.Open(ctx, "BrandLogo"))
	require.NoError(t, f.ctl.Select(ctx, "R42"))

	require.NoError(t, f.ctl.Delete(ctx, "R42"))

	assert.Equal(t, []string{"c1/R42"}, f.api.deleteCalls)
	assert.Equal(t, []string{"c1", "c1"}, f.api.lists())
	v := f.ctl.View()
	assert.NotContains(t, ids(v.Resources), "R42")
	assert.Equal(t, Selection{}, v.Selection)
}

func TestDelete_FailResultDoesNotRefetch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.ctl.Open(ctx, "BrandLogo"))
	f.api.deleteResult = "FAIL"

	err := f.ctl.Delete(ctx, "R42")
	require.ErrorIs(t, err, ErrDeleteRejected)

	assert.Equal(t, []string{"c1"}, f.api.lists())
	assert.Contains(t, ids(f.ctl.View().Resources), "R42")
}

func TestDelete_TransportErrorDoesNotRefetch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.ctl.Open(ctx, "BrandLogo"))
	f.api.deleteErr = errors.New("down")

	require.Error(t, f.ctl.Delete(ctx, "R41"))
	assert.Equal(t, []string{"c1"}, f.api.lists())
	assert.Len(t, f.notes.Errors(), 1)
}

func TestRefreshWithoutCategory(t *testing.T) {
	f := newFixture()
	assert.ErrorIs(t, f.ctl.Refresh(context.Background()), ErrNoCategory)
}

func TestClose_DropsLateResults(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.registry.ReplaceAll(f.api.categories)
	gate := f.api.hold("c1")

	done := make(chan error, 1)
	go func() { done <- f.ctl.Open(ctx, "BrandLogo") }()
	require.Eventually(t, func() bool { return len(f.api.lists()) == 1 }, timeout, tick)

	f.ctl.Close()
	close(gate)
	require.NoError(t, <-done)

	v := f.ctl.View()
	assert.Empty(t, v.Resources)
	assert.Equal(t, Idle, v.State)
}

func TestClose_ResetsGalleryForNextSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.ctl.Open(ctx, "BrandLogo"))
	require.NoError(t, f.ctl.Select(ctx, "R41"))

	f.ctl.Close()
	f.session.Clear()

	v := f.ctl.View()
	assert.Equal(t, Idle, v.State)
	assert.Empty(t, v.Route)
	assert.Empty(t, v.CategoryID)
	assert.Empty(t, v.Resources)
	assert.Equal(t, Selection{}, v.Selection)

	require.NoError(t, f.ctl.Open(ctx, "BrandLogo"))
	v = f.ctl.View()
	assert.Equal(t, ResourcesReady, v.State)
	assert.Equal(t, "c1", v.CategoryID)
	assert.Equal(t, Selection{}, v.Selection)
	assert.Equal(t, []string{"c1/R41"}, f.api.detailReads())
}

func TestSelect_LatestRequestWins(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.ctl.Open(ctx, "BrandLogo"))
	gate := f.api.holdDetail("R41")

	done := make(chan error, 1)
	go func() { done <- f.ctl.Select(ctx, "R41") }()
	require.Eventually(t, func() bool { return len(f.api.detailReads()) == 1 }, timeout, tick)

	require.NoError(t, f.ctl.Select(ctx, "R42"))
	close(gate)
	require.NoError(t, <-done)

	sel := f.ctl.View().Selection
	assert.Equal(t, "R42", sel.ResourceID)
	require.NotNil(t, sel.Detail)
	assert.Equal(t, "dbx mark", sel.Detail.ResourceName)
}

func TestSelect_LateDetailAfterDeselectIsDropped(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.ctl.Open(ctx, "BrandLogo"))
	gate := f.api.holdDetail("R41")

	done := make(chan error, 1)
	go func() { done <- f.ctl.Select(ctx, "R41") }()
	require.Eventually(t, func() bool { return len(f.api.detailReads()) == 1 }, timeout, tick)

	f.ctl.Deselect()
	close(gate)
	require.NoError(t, <-done)

	sel := f.ctl.View().Selection
	assert.Empty(t, sel.ResourceID)
	assert.Nil(t, sel.Detail)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "resources ready", ResourcesReady.String())
	assert.Equal(t, "state(42)", State(42).String())
}

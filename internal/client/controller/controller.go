package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/team-dbx/dbx/internal/client/fetch"
	"github.com/team-dbx/dbx/internal/client/notify"
	"github.com/team-dbx/dbx/internal/client/state"
	"github.com/team-dbx/dbx/internal/common"
	"github.com/team-dbx/dbx/internal/dto"
)

// LoadErrorMessage is shown for every failed gallery read.
const LoadErrorMessage = "There was an issue loading your data. Please try again later."

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrNoCategory       = errors.New("no category is open")
	ErrDeleteRejected   = errors.New("delete rejected by server")
)

type State int

const (
	Idle State = iota
	CategoriesLoading
	CategoriesReady
	ResourcesLoading
	ResourcesReady
	CategoryNotFound
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CategoriesLoading:
		return "categories loading"
	case CategoriesReady:
		return "categories ready"
	case ResourcesLoading:
		return "resources loading"
	case ResourcesReady:
		return "resources ready"
	case CategoryNotFound:
		return "category not found"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// API is the part of the Resource API the gallery reads and mutates.
type API interface {
	CategoriesURL() string
	FetchCategories(ctx context.Context, url string) ([]dto.Category, error)
	CategoryResources(ctx context.Context, categoryID string) ([]dto.ResourceSummary, error)
	Resource(ctx context.Context, categoryID, resourceID string) (*dto.ResourceDetail, error)
	DeleteResource(ctx context.Context, categoryID, resourceID string) (string, error)
}

// Selection is the resource shown in the detail panel. Detail is nil
// whenever ResourceID is empty.
type Selection struct {
	ResourceID string
	CategoryID string
	Detail     *dto.ResourceDetail
}

// View is a consistent snapshot of the gallery.
type View struct {
	State      State
	Route      string
	CategoryID string
	Resources  []dto.ResourceSummary
	URLs       []string
	Selection  Selection
}

type ResourceList struct {
	api        API
	registry   *state.CategoryRegistry
	session    *state.Session
	notifier   notify.Notifier
	categories *fetch.Hook[[]dto.Category]

	mu         sync.Mutex
	state      State
	route      string
	categoryID string
	loaded     bool
	resources  []dto.ResourceSummary
	token      uint64
	selection  Selection
	selToken   uint64
}

func NewResourceList(api API, registry *state.CategoryRegistry, session *state.Session, n notify.Notifier) *ResourceList {
	return &ResourceList{
		api:        api,
		registry:   registry,
		session:    session,
		notifier:   n,
		categories: fetch.New(api.FetchCategories),
	}
}

// View returns a copy of the current gallery state.
func (c *ResourceList) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		State:      c.state,
		Route:      c.route,
		CategoryID: c.categoryID,
		Resources:  make([]dto.ResourceSummary, len(c.resources)),
		URLs:       make([]string, 0, len(c.resources)),
		Selection:  c.selection,
	}
	copy(v.Resources, c.resources)
	for _, r := range c.resources {
		v.URLs = append(v.URLs, r.SvgURL)
	}
	return v
}

// Open routes the gallery to the category called name. An empty name opens
// the default landing category.
func (c *ResourceList) Open(ctx context.Context, name string) error {
	if name == "" {
		name = common.DefaultCategoryName
	}

	c.mu.Lock()
	c.token++
	tok := c.token
	c.route = name
	c.mu.Unlock()

	if c.registry.Empty() {
		ok, err := c.loadCategories(ctx, tok)
		if !ok {
			return err
		}
	}
	return c.resolve(ctx, tok, name)
}

// loadCategories reports whether the registry was filled for this route.
func (c *ResourceList) loadCategories(ctx context.Context, tok uint64) (bool, error) {
	c.setState(tok, CategoriesLoading)

	cats, err := c.categories.Load(ctx, c.api.CategoriesURL())
	if err != nil {
		if errors.Is(err, fetch.ErrSuperseded) {
			return false, nil
		}
		// forget the failed outcome so the next Open asks again
		c.categories.Unmount()
		if c.setState(tok, Idle) {
			c.notifier.Error(LoadErrorMessage)
		}
		return false, fmt.Errorf("load categories: %w", err)
	}

	c.registry.ReplaceAll(cats)
	c.setState(tok, CategoriesReady)
	return true, nil
}

// setState applies s only while tok is the current route token.
func (c *ResourceList) setState(tok uint64, s State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tok != c.token {
		return false
	}
	c.state = s
	return true
}

func (c *ResourceList) resolve(ctx context.Context, tok uint64, name string) error {
	cat, ok := c.registry.Lookup(name)

	c.mu.Lock()
	if tok != c.token {
		c.mu.Unlock()
		return nil
	}
	if !ok {
		c.state = CategoryNotFound
		c.categoryID = ""
		c.resources = nil
		c.loaded = false
		c.clearSelectionLocked()
		c.mu.Unlock()

		c.notifier.Error(fmt.Sprintf("Category %q not found.", name))
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, name)
	}
	if cat.ID != c.categoryID {
		c.categoryID = cat.ID
		c.resources = nil
		c.loaded = false
		c.clearSelectionLocked()
	}
	c.state = ResourcesLoading
	c.mu.Unlock()

	c.session.SetActiveCategory(cat.ID)
	return c.fetchResources(ctx, tok, cat.ID)
}

func (c *ResourceList) fetchResources(ctx context.Context, tok uint64, categoryID string) error {
	list, err := c.api.CategoryResources(ctx, categoryID)

	c.mu.Lock()
	if tok != c.token || categoryID != c.categoryID {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		if c.loaded {
			c.state = ResourcesReady
		} else {
			c.state = CategoriesReady
		}
		c.mu.Unlock()

		c.notifier.Error(LoadErrorMessage)
		return fmt.Errorf("load resources of %s: %w", categoryID, err)
	}
	c.resources = list
	c.loaded = true
	c.state = ResourcesReady
	c.mu.Unlock()
	return nil
}

// Refresh re-fetches the current category's resources.
func (c *ResourceList) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.categoryID == "" {
		c.mu.Unlock()
		return ErrNoCategory
	}
	c.token++
	tok := c.token
	categoryID := c.categoryID
	c.state = ResourcesLoading
	c.mu.Unlock()

	return c.fetchResources(ctx, tok, categoryID)
}

// Select loads the detail of resourceID. An empty id deselects without a
// request.
func (c *ResourceList) Select(ctx context.Context, resourceID string) error {
	c.mu.Lock()
	c.selToken++
	if resourceID == "" {
		c.selection = Selection{}
		c.mu.Unlock()
		return nil
	}
	st := c.selToken
	categoryID := c.categoryID
	c.mu.Unlock()

	if categoryID == "" {
		return ErrNoCategory
	}

	detail, err := c.api.Resource(ctx, categoryID, resourceID)

	c.mu.Lock()
	if st != c.selToken || categoryID != c.categoryID {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.mu.Unlock()
		c.notifier.Error(LoadErrorMessage)
		return fmt.Errorf("load resource %s: %w", resourceID, err)
	}
	c.selection = Selection{ResourceID: resourceID, CategoryID: categoryID, Detail: detail}
	c.mu.Unlock()
	return nil
}

// Deselect clears the selection and its detail together.
func (c *ResourceList) Deselect() {
	_ = c.Select(context.Background(), "")
}

func (c *ResourceList) clearSelectionLocked() {
	c.selToken++
	c.selection = Selection{}
}

// Delete removes resourceID from the current category. The list is
// re-fetched only when the server answers "OK"; otherwise nothing changes.
func (c *ResourceList) Delete(ctx context.Context, resourceID string) error {
	c.mu.Lock()
	categoryID := c.categoryID
	c.mu.Unlock()
	if categoryID == "" {
		return ErrNoCategory
	}

	result, err := c.api.DeleteResource(ctx, categoryID, resourceID)
	if err != nil {
		c.notifier.Error("Delete failed. Please try again.")
		return fmt.Errorf("delete %s: %w", resourceID, err)
	}
	if result != common.ResultOK {
		c.notifier.Error("Delete failed. Please try again.")
		return fmt.Errorf("%w: %s", ErrDeleteRejected, result)
	}

	c.mu.Lock()
	if c.selection.ResourceID == resourceID {
		c.clearSelectionLocked()
	}
	c.mu.Unlock()

	return c.Refresh(ctx)
}

// Close drops every in-flight result and resets the gallery to Idle with
// no route, list or selection. The next Open starts from scratch.
func (c *ResourceList) Close() {
	c.categories.Unmount()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.token++
	c.state = Idle
	c.route = ""
	c.categoryID = ""
	c.resources = nil
	c.loaded = false
	c.clearSelectionLocked()
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/team-dbx/dbx/internal/common"
	"github.com/team-dbx/dbx/internal/dbx"
	"github.com/team-dbx/dbx/internal/logging"
	"github.com/team-dbx/dbx/internal/server/models"
	"github.com/team-dbx/dbx/internal/server/repositories/categories"
	"github.com/team-dbx/dbx/internal/server/repositories/files"
	"github.com/team-dbx/dbx/internal/server/repositories/resources"
	"github.com/team-dbx/dbx/internal/server/repositories/users"
	"github.com/team-dbx/dbx/internal/server/repositories/versions"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func discardLogger() logging.Logger {
	return logging.NewTextLogger(io.Discard, "error")
}

// memDB backs every fake repository with plain maps.
type memDB struct {
	mu         sync.Mutex
	categories map[string]models.Category
	users      map[string]models.User
	resources  map[string]models.Resource
	versions   map[string]models.Version
	files      []models.File

	failOn string
}

func newMemDB() *memDB {
	return &memDB{
		categories: map[string]models.Category{},
		users:      map[string]models.User{},
		resources:  map[string]models.Resource{},
		versions:   map[string]models.Version{},
	}
}

var errFake = errors.New("boom")

func (m *memDB) fail(op string) error {
	if m.failOn == op {
		return errFake
	}
	return nil
}

type fakeRepoManager struct{ m *memDB }

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Categories(dbx.DBTX) categories.Repository   { return (*fakeCategories)(f.m) }
func (f *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return (*fakeUsers)(f.m) }
func (f *fakeRepoManager) Resources(dbx.DBTX) resources.Repository     { return (*fakeResources)(f.m) }
func (f *fakeRepoManager) Versions(dbx.DBTX) versions.Repository       { return (*fakeVersions)(f.m) }
func (f *fakeRepoManager) Files(dbx.DBTX) files.Repository             { return (*fakeFiles)(f.m) }

type fakeCategories memDB

func (f *fakeCategories) List(context.Context) ([]models.Category, error) {
	m := (*memDB)(f)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("categories.List"); err != nil {
		return nil, err
	}
	out := []models.Category{}
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeCategories) GetByID(_ context.Context, id string) (*models.Category, error) {
	m := (*memDB)(f)
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (f *fakeCategories) InsertIfAbsent(_ context.Context, c *models.Category) error {
	m := (*memDB)(f)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("categories.Insert"); err != nil {
		return err
	}
	for _, existing := range m.categories {
		if existing.Name == c.Name {
			return nil
		}
	}
	m.categories[c.ID] = *c
	return nil
}

type fakeUsers memDB

func (f *fakeUsers) Upsert(_ context.Context, u *models.User) (bool, error) {
	m := (*memDB)(f)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("users.Upsert"); err != nil {
		return false, err
	}
	if existing, ok := m.users[u.Email]; ok {
		*u = existing
		return false, nil
	}
	m.users[u.Email] = *u
	return true, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m := (*memDB)(f)
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

type fakeResources memDB

func (f *fakeResources) Create(_ context.Context, r *models.Resource) error {
	m := (*memDB)(f)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("resources.Create"); err != nil {
		return err
	}
	m.resources[r.ID] = *r
	return nil
}

func (f *fakeResources) Get(_ context.Context, categoryID, resourceID string) (*models.Resource, error) {
	m := (*memDB)(f)
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resources[resourceID]
	if !ok || r.CategoryID != categoryID {
		return nil, common.ErrorNotFound
	}
	return &r, nil
}

func (f *fakeResources) SetCurrentVersion(_ context.Context, resourceID, versionID string) error {
	m := (*memDB)(f)
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resources[resourceID]
	if !ok {
		return common.ErrorNotFound
	}
	r.CurrentVersionID = versionID
	m.resources[resourceID] = r
	return nil
}

func (f *fakeResources) ListByCategory(_ context.Context, categoryID string) ([]models.ResourceSummary, error) {
	m := (*memDB)(f)
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ResourceSummary{}
	for _, r := range m.resources {
		if r.CategoryID != categoryID {
			continue
		}
		v := m.versions[r.CurrentVersionID]
		s := models.ResourceSummary{ID: r.ID, Name: r.Name, Version: v.Version}
		for _, file := range m.files {
			if file.VersionID == v.ID && file.Position == 0 {
				s.SvgKey = file.SvgKey
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeResources) Detail(_ context.Context, categoryID, resourceID string) (*models.ResourceDetail, error) {
	m := (*memDB)(f)
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resources[resourceID]
	if !ok || r.CategoryID != categoryID {
		return nil, common.ErrorNotFound
	}
	v := m.versions[r.CurrentVersionID]
	author := ""
	for _, u := range m.users {
		if u.ID == v.AuthorID {
			author = u.Name
		}
	}
	return &models.ResourceDetail{
		ResourceID:   r.ID,
		CategoryName: m.categories[categoryID].Name,
		AuthorName:   author,
		ResourceName: r.Name,
		UploadDate:   v.UploadDate,
		Version:      v.Version,
		VersionID:    v.ID,
	}, nil
}

func (f *fakeResources) Delete(_ context.Context, categoryID, resourceID string) (bool, error) {
	m := (*memDB)(f)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("resources.Delete"); err != nil {
		return false, err
	}
	r, ok := m.resources[resourceID]
	if !ok || r.CategoryID != categoryID {
		return false, nil
	}
	delete(m.resources, resourceID)
	return true, nil
}

type fakeVersions memDB

func (f *fakeVersions) Create(_ context.Context, v *models.Version) error {
	m := (*memDB)(f)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("versions.Create"); err != nil {
		return err
	}
	stored := *v
	stored.Files = nil
	m.versions[v.ID] = stored
	return nil
}

func (f *fakeVersions) ListByResource(_ context.Context, resourceID string) ([]models.Version, error) {
	m := (*memDB)(f)
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Version{}
	for _, v := range m.versions {
		if v.ResourceID == resourceID {
			for _, u := range m.users {
				if u.ID == v.AuthorID {
					v.AuthorName = u.Name
				}
			}
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadDate.After(out[j].UploadDate) })
	return out, nil
}

type fakeFiles memDB

func (f *fakeFiles) Create(_ context.Context, file *models.File) error {
	m := (*memDB)(f)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = append(m.files, *file)
	return nil
}

func (f *fakeFiles) ListByVersion(_ context.Context, versionID string) ([]models.File, error) {
	m := (*memDB)(f)
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.File{}
	for _, file := range m.files {
		if file.VersionID == versionID {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeFiles) ListByResource(_ context.Context, resourceID string) ([]models.File, error) {
	m := (*memDB)(f)
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.File{}
	for _, file := range m.files {
		if v, ok := m.versions[file.VersionID]; ok && v.ResourceID == resourceID {
			out = append(out, file)
		}
	}
	return out, nil
}

// fakeStore keeps blobs in memory.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	s.types[key] = contentType
	return nil
}

func (s *fakeStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.objects, k)
		s.deleted = append(s.deleted, k)
	}
	return nil
}

func (s *fakeStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return "https://cdn.test/" + key
}

func (s *fakeStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.objects))
	for k := range s.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type fakeRasterizer struct{ err error }

func (r fakeRasterizer) Rasterize(svg []byte) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return append([]byte("png:"), svg...), nil
}

// fakeVerifier maps tokens to emails.
type fakeVerifier map[string]string

func (v fakeVerifier) Verify(_ context.Context, token string) (string, error) {
	email, ok := v[token]
	if !ok {
		return "", common.ErrInvalidToken
	}
	return email, nil
}

package resources

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/team-dbx/dbx/internal/common"
	"github.com/team-dbx/dbx/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+resources\s*\(id,\s*category_id,\s*name,\s*author_id\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+created_at\s*$`).
		WithArgs("r1", "c1", "Acme", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	res := &models.Resource{ID: "r1", CategoryID: "c1", Name: "Acme", AuthorID: "u1"}
	require.NoError(t, repo.Create(context.Background(), res))
	assert.Equal(t, now, res.CreatedAt)
}

func TestGet(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `(?s)^SELECT\s+id,.*FROM\s+resources\s+WHERE\s+category_id\s*=\s*\$1\s+AND\s+id\s*=\s*\$2\s*$`

	mock.ExpectQuery(q).WithArgs("c1", "r1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "category_id", "name", "author_id", "current_version_id", "created_at"}).
			AddRow("r1", "c1", "Acme", "u1", "v1", time.Now()))
	got, err := repo.Get(context.Background(), "c1", "r1")
	require.NoError(t, err)
	assert.Equal(t, "v1", got.CurrentVersionID)

	mock.ExpectQuery(q).WithArgs("c2", "r1").WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(context.Background(), "c2", "r1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSetCurrentVersion(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `(?s)^UPDATE\s+resources\s+SET\s+current_version_id\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1$`

	mock.ExpectExec(q).WithArgs("r1", "v2").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetCurrentVersion(context.Background(), "r1", "v2"))

	mock.ExpectExec(q).WithArgs("gone", "v2").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SetCurrentVersion(context.Background(), "gone", "v2"), common.ErrorNotFound)
}

func TestListByCategory(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+r\.id,\s*r\.name,\s*v\.version,.*LEFT\s+JOIN\s+files\s+f\s+ON.*f\.position\s*=\s*0.*WHERE\s+r\.category_id\s*=\s*\$1`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "version", "svg_key"}).
			AddRow("r1", "Acme", "1.0.0", "resources/r1/v1/default.svg").
			AddRow("r2", "Bolt", "2.0.0", ""))

	got, err := repo.ListByCategory(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, []models.ResourceSummary{
		{ID: "r1", Name: "Acme", Version: "1.0.0", SvgKey: "resources/r1/v1/default.svg"},
		{ID: "r2", Name: "Bolt", Version: "2.0.0"},
	}, got)
}

func TestListByCategory_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("db down"))

	_, err := repo.ListByCategory(context.Background(), "c1")
	assert.ErrorContains(t, err, "db error")
}

func TestDetail(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `(?s)^SELECT\s+r\.id,\s*c\.name,\s*u\.name,.*JOIN\s+users\s+u\s+ON\s+u\.id\s*=\s*v\.author_id.*WHERE\s+r\.category_id\s*=\s*\$1\s+AND\s+r\.id\s*=\s*\$2`
	date := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q).WithArgs("c1", "r1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "cname", "uname", "rname", "upload_date", "version", "vid"}).
			AddRow("r1", "BrandLogo", "alice", "Acme", date, "1.0.0", "v1"))
	got, err := repo.Detail(context.Background(), "c1", "r1")
	require.NoError(t, err)
	assert.Equal(t, &models.ResourceDetail{
		ResourceID: "r1", CategoryName: "BrandLogo", AuthorName: "alice", ResourceName: "Acme",
		UploadDate: date, Version: "1.0.0", VersionID: "v1",
	}, got)

	mock.ExpectQuery(q).WithArgs("c1", "zz").WillReturnError(sql.ErrNoRows)
	_, err = repo.Detail(context.Background(), "c1", "zz")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `(?s)^DELETE\s+FROM\s+resources\s+WHERE\s+category_id\s*=\s*\$1\s+AND\s+id\s*=\s*\$2$`

	mock.ExpectExec(q).WithArgs("c1", "r1").WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.Delete(context.Background(), "c1", "r1")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec(q).WithArgs("c1", "r1").WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.Delete(context.Background(), "c1", "r1")
	require.NoError(t, err)
	assert.False(t, ok)
}

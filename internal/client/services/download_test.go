package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/team-dbx/dbx/internal/client/notify"
	"github.com/team-dbx/dbx/internal/logging"
)

type fakeReader struct {
	data []byte
	name string
	err  error
	urls []string
}

func (f *fakeReader) Read(ctx context.Context, fileURL string) ([]byte, string, error) {
	f.urls = append(f.urls, fileURL)
	return f.data, f.name, f.err
}

func TestDownload_SavesWithoutOverwriting(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	r := &fakeReader{data: []byte("<svg/>"), name: "default.svg"}
	notes := &notify.Recorder{}
	svc := NewDownloadService(r, dir, notes, logging.NewTextLogger(io.Discard, "error"))

	first, err := svc.Download(context.Background(), "https://cdn/resources/r1/v1/default.svg")
	require.NoError(t, err)
	second, err := svc.Download(context.Background(), "https://cdn/resources/r1/v1/default.svg")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "default.svg"), first)
	assert.Equal(t, filepath.Join(dir, "default (1).svg"), second)

	b, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(b))
	assert.Len(t, notes.Successes(), 2)
}

func TestDownload_ReadFailure(t *testing.T) {
	dir := t.TempDir()
	r := &fakeReader{err: errors.New("AccessDenied")}
	notes := &notify.Recorder{}
	svc := NewDownloadService(r, dir, notes, logging.NewTextLogger(io.Discard, "error"))

	_, err := svc.Download(context.Background(), "https://cdn/x.png")
	require.Error(t, err)
	assert.Equal(t, []string{MsgDownloadFailed}, notes.Errors())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

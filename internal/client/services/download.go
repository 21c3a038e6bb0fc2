package services

import (
	"context"
	"fmt"

	"github.com/team-dbx/dbx/internal/client/notify"
	"github.com/team-dbx/dbx/internal/client/storage"
	"github.com/team-dbx/dbx/internal/filex"
	"github.com/team-dbx/dbx/internal/logging"
)

const MsgDownloadFailed = "File download failed."

// DownloadService saves stored files into the download directory.
type DownloadService struct {
	reader   storage.Reader
	dir      string
	notifier notify.Notifier
	log      logging.Logger
}

func NewDownloadService(r storage.Reader, dir string, n notify.Notifier, log logging.Logger) *DownloadService {
	return &DownloadService{reader: r, dir: dir, notifier: n, log: log}
}

// Download fetches fileURL and writes it under its own file name, never
// overwriting an existing file. It returns the saved path.
func (s *DownloadService) Download(ctx context.Context, fileURL string) (string, error) {
	data, name, err := s.reader.Read(ctx, fileURL)
	if err != nil {
		return "", s.failed(ctx, fileURL, err)
	}

	dir, err := filex.EnsureDir(s.dir)
	if err != nil {
		return "", s.failed(ctx, fileURL, err)
	}
	path, err := filex.SaveFile(dir, name, data)
	if err != nil {
		return "", s.failed(ctx, fileURL, err)
	}

	s.log.Info(ctx, "file downloaded", "url", fileURL, "path", path, "bytes", len(data))
	s.notifier.Success(fmt.Sprintf("Saved to %s", path))
	return path, nil
}

func (s *DownloadService) failed(ctx context.Context, fileURL string, err error) error {
	s.log.Error(ctx, "download failed", "url", fileURL, "error", err)
	s.notifier.Error(MsgDownloadFailed)
	return err
}

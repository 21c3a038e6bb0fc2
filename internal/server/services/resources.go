package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/team-dbx/dbx/internal/common"
	"github.com/team-dbx/dbx/internal/dbx"
	"github.com/team-dbx/dbx/internal/dto"
	"github.com/team-dbx/dbx/internal/logging"
	"github.com/team-dbx/dbx/internal/server/models"
	"github.com/team-dbx/dbx/internal/server/raster"
	"github.com/team-dbx/dbx/internal/server/repositories/repomanager"
	"github.com/team-dbx/dbx/internal/server/storage"
)

const (
	svgContentType = "image/svg+xml"
	pngContentType = "image/png"

	// uploadParallelism bounds concurrent rasterize+put jobs per request.
	uploadParallelism = 4
)

// StorageKey is the object key of one file blob.
func StorageKey(resourceID, versionID, fileName, ext string) string {
	return fmt.Sprintf("resources/%s/%s/%s.%s", resourceID, versionID, fileName, ext)
}

// ResourceService runs the upload pipeline and answers gallery queries.
type ResourceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.BlobStore
	rasterizer  raster.Rasterizer
	log         logging.Logger
	now         func() time.Time
}

func NewResourceService(db *sql.DB, m repomanager.RepositoryManager, store storage.BlobStore,
	r raster.Rasterizer, log logging.Logger) *ResourceService {
	return &ResourceService{db: db, repomanager: m, store: store, rasterizer: r, log: log, now: time.Now}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, fmt.Sprintf(format, args...))
}

// validate checks an upload body. A new resource needs a name, a new
// version does not look at it.
func validate(req *dto.UploadRequest, needName bool, author *models.User) error {
	if needName && strings.TrimSpace(req.Name) == "" {
		return validationError("name is required")
	}
	if strings.TrimSpace(req.Detail.Version) == "" {
		return validationError("version is required")
	}
	if req.Detail.Email != "" && !strings.EqualFold(req.Detail.Email, author.Email) {
		return common.ErrEmailMismatch
	}
	if req.Detail.UploadDate != "" {
		if _, err := time.Parse(time.RFC3339, req.Detail.UploadDate); err != nil {
			return validationError("uploadDate must be RFC3339")
		}
	}
	if len(req.Files) == 0 {
		return validationError("at least one file is required")
	}

	seen := make(map[string]bool, len(req.Files))
	for _, f := range req.Files {
		if !common.IsFileName(f.FileName) {
			return validationError("unknown file name %q", f.FileName)
		}
		if seen[f.FileName] {
			return validationError("duplicate file name %q", f.FileName)
		}
		seen[f.FileName] = true
		if strings.TrimSpace(f.SvgFile) == "" {
			return validationError("file %q is empty", f.FileName)
		}
	}
	return nil
}

func (s *ResourceService) uploadDate(req *dto.UploadRequest) time.Time {
	if t, err := time.Parse(time.RFC3339, req.Detail.UploadDate); err == nil {
		return t.UTC()
	}
	return s.now().UTC()
}

// storeFiles rasterizes and uploads every file of a version in parallel.
// The returned files keep the request order. On failure the blobs already
// written are removed.
func (s *ResourceService) storeFiles(ctx context.Context, resourceID, versionID string, in []dto.UploadFile) ([]models.File, error) {
	out := make([]models.File, len(in))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadParallelism)
	for i, f := range in {
		g.Go(func() error {
			svg := []byte(f.SvgFile)
			png, err := s.rasterizer.Rasterize(svg)
			if err != nil {
				return validationError("file %q is not a renderable svg", f.FileName)
			}

			file := models.File{
				ID:        uuid.NewString(),
				VersionID: versionID,
				FileName:  f.FileName,
				SvgKey:    StorageKey(resourceID, versionID, f.FileName, "svg"),
				PngKey:    StorageKey(resourceID, versionID, f.FileName, "png"),
				Position:  i,
			}
			if err := s.store.Put(gctx, file.SvgKey, svg, svgContentType); err != nil {
				return err
			}
			out[i] = file
			if err := s.store.Put(gctx, file.PngKey, png, pngContentType); err != nil {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.removeBlobs(ctx, out)
		return nil, err
	}
	return out, nil
}

// removeBlobs deletes best-effort; failures are only logged.
func (s *ResourceService) removeBlobs(ctx context.Context, files []models.File) {
	var keys []string
	for _, f := range files {
		keys = append(keys, f.SvgKey, f.PngKey)
	}
	if len(keys) == 0 {
		return
	}
	if err := s.store.Delete(context.WithoutCancel(ctx), keys...); err != nil {
		s.log.Warn(ctx, "blob cleanup failed", "error", err)
	}
}

func (s *ResourceService) insertVersion(ctx context.Context, tx dbx.DBTX, v *models.Version) error {
	if err := s.repomanager.Versions(tx).Create(ctx, v); err != nil {
		return err
	}
	filesRepo := s.repomanager.Files(tx)
	for i := range v.Files {
		if err := filesRepo.Create(ctx, &v.Files[i]); err != nil {
			return err
		}
	}
	return s.repomanager.Resources(tx).SetCurrentVersion(ctx, v.ResourceID, v.ID)
}

// Create stores a new resource with its first version.
func (s *ResourceService) Create(ctx context.Context, categoryID string, author *models.User, req *dto.UploadRequest) (*dto.UploadResponse, error) {
	if err := validate(req, true, author); err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Categories(s.db).GetByID(ctx, categoryID); err != nil {
		return nil, fmt.Errorf("category %s: %w", categoryID, err)
	}

	resourceID, versionID := uuid.NewString(), uuid.NewString()
	files, err := s.storeFiles(ctx, resourceID, versionID, req.Files)
	if err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res := &models.Resource{ID: resourceID, CategoryID: categoryID, Name: strings.TrimSpace(req.Name), AuthorID: author.ID}
		if err := s.repomanager.Resources(tx).Create(ctx, res); err != nil {
			return err
		}
		return s.insertVersion(ctx, tx, &models.Version{
			ID:          versionID,
			ResourceID:  resourceID,
			Version:     req.Detail.Version,
			Description: req.Detail.Description,
			AuthorID:    author.ID,
			UploadDate:  s.uploadDate(req),
			Files:       files,
		})
	})
	if err != nil {
		s.removeBlobs(ctx, files)
		return nil, fmt.Errorf("save resource: %w", err)
	}

	s.log.Info(ctx, "resource created", "resource", resourceID, "category", categoryID, "files", len(files))
	return &dto.UploadResponse{ID: resourceID, Version: req.Detail.Version}, nil
}

// AddVersion appends a version to an existing resource and makes it current.
func (s *ResourceService) AddVersion(ctx context.Context, categoryID, resourceID string, author *models.User, req *dto.UploadRequest) (*dto.UploadResponse, error) {
	if err := validate(req, false, author); err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Resources(s.db).Get(ctx, categoryID, resourceID); err != nil {
		return nil, fmt.Errorf("resource %s: %w", resourceID, err)
	}

	versionID := uuid.NewString()
	files, err := s.storeFiles(ctx, resourceID, versionID, req.Files)
	if err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.insertVersion(ctx, tx, &models.Version{
			ID:          versionID,
			ResourceID:  resourceID,
			Version:     req.Detail.Version,
			Description: req.Detail.Description,
			AuthorID:    author.ID,
			UploadDate:  s.uploadDate(req),
			Files:       files,
		})
	})
	if err != nil {
		s.removeBlobs(ctx, files)
		return nil, fmt.Errorf("save version: %w", err)
	}

	s.log.Info(ctx, "version added", "resource", resourceID, "version", req.Detail.Version)
	return &dto.UploadResponse{ID: resourceID, Version: req.Detail.Version}, nil
}

// List returns the gallery rows of a category. An unknown category is
// ErrorNotFound, an empty one is an empty list.
func (s *ResourceService) List(ctx context.Context, categoryID string) ([]dto.ResourceSummary, error) {
	if _, err := s.repomanager.Categories(s.db).GetByID(ctx, categoryID); err != nil {
		return nil, fmt.Errorf("category %s: %w", categoryID, err)
	}
	rows, err := s.repomanager.Resources(s.db).ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ResourceSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ResourceSummary{ID: r.ID, Name: r.Name, Version: r.Version, SvgURL: s.store.URL(r.SvgKey)})
	}
	return out, nil
}

func (s *ResourceService) fileRecords(files []models.File) []dto.FileRecord {
	out := make([]dto.FileRecord, 0, len(files))
	for _, f := range files {
		out = append(out, dto.FileRecord{
			ID:       f.ID,
			FileName: f.FileName,
			SvgURL:   s.store.URL(f.SvgKey),
			PngURL:   s.store.URL(f.PngKey),
		})
	}
	return out
}

// Detail returns the resource at its current version.
func (s *ResourceService) Detail(ctx context.Context, categoryID, resourceID string) (*dto.ResourceDetail, error) {
	d, err := s.repomanager.Resources(s.db).Detail(ctx, categoryID, resourceID)
	if err != nil {
		return nil, fmt.Errorf("resource %s: %w", resourceID, err)
	}
	files, err := s.repomanager.Files(s.db).ListByVersion(ctx, d.VersionID)
	if err != nil {
		return nil, err
	}

	return &dto.ResourceDetail{
		CategoryName: d.CategoryName,
		AuthorName:   d.AuthorName,
		ResourceName: d.ResourceName,
		UploadDate:   d.UploadDate.UTC().Format(time.RFC3339),
		Version:      d.Version,
		Files:        s.fileRecords(files),
	}, nil
}

// Versions returns the version history of a resource, newest first.
func (s *ResourceService) Versions(ctx context.Context, categoryID, resourceID string) ([]dto.VersionRecord, error) {
	if _, err := s.repomanager.Resources(s.db).Get(ctx, categoryID, resourceID); err != nil {
		return nil, fmt.Errorf("resource %s: %w", resourceID, err)
	}
	versions, err := s.repomanager.Versions(s.db).ListByResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	files, err := s.repomanager.Files(s.db).ListByResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	byVersion := make(map[string][]models.File)
	for _, f := range files {
		byVersion[f.VersionID] = append(byVersion[f.VersionID], f)
	}

	out := make([]dto.VersionRecord, 0, len(versions))
	for _, v := range versions {
		out = append(out, dto.VersionRecord{
			ID:          v.ID,
			Version:     v.Version,
			UploadDate:  v.UploadDate.UTC().Format(time.RFC3339),
			AuthorName:  v.AuthorName,
			Description: v.Description,
			Files:       s.fileRecords(byVersion[v.ID]),
		})
	}
	return out, nil
}

// Delete removes a resource and reports whether it existed. Blobs are
// removed after the rows are gone; a storage failure does not fail the
// delete.
func (s *ResourceService) Delete(ctx context.Context, categoryID, resourceID string) (bool, error) {
	var files []models.File
	deleted, err := dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (bool, error) {
		var err error
		if files, err = s.repomanager.Files(tx).ListByResource(ctx, resourceID); err != nil {
			return false, err
		}
		return s.repomanager.Resources(tx).Delete(ctx, categoryID, resourceID)
	})
	if err != nil {
		return false, fmt.Errorf("delete resource: %w", err)
	}
	if !deleted {
		return false, nil
	}

	s.removeBlobs(ctx, files)
	s.log.Info(ctx, "resource deleted", "resource", resourceID, "category", categoryID)
	return true, nil
}

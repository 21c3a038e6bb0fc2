package forms

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/team-dbx/dbx/internal/client/notify"
	"github.com/team-dbx/dbx/internal/common"
	"github.com/team-dbx/dbx/internal/dto"
)

type Mode int

const (
	// Initial is the bootstrap form shown after a first login.
	Initial Mode = iota
	New
	Version
)

func (m Mode) String() string {
	switch m {
	case Initial:
		return "initial"
	case New:
		return "new"
	case Version:
		return "version"
	}
	return "unknown"
}

const (
	DefaultVersion = "1.0.0"

	UploadSuccessMessage = "Upload successful!"
	UploadFailedMessage  = "Upload failed. Please try again."
	UploadErrorMessage   = "Error uploading data. Please try again."
)

var (
	ErrMissingCategory = errors.New("form has no category")
	ErrMissingResource = errors.New("version form has no resource")
	ErrMissingVersion  = errors.New("version is required")
	ErrUploadFailed    = errors.New("upload failed")
)

// Uploader is the write side of the Resource API.
type Uploader interface {
	CreateResource(ctx context.Context, categoryID string, req *dto.UploadRequest) (int, error)
	AddVersion(ctx context.Context, categoryID, resourceID string, req *dto.UploadRequest) (int, error)
}

// Config selects the form variant. Destination is the category name the
// console returns to after a successful upload; Initial always returns to
// the default category.
type Config struct {
	Mode        Mode
	CategoryID  string
	ResourceID  string
	Destination string
}

type Form struct {
	cfg      Config
	api      Uploader
	notifier notify.Notifier
	email    string
	now      func() time.Time

	Slots       *Slots
	Name        string
	Version     string
	Description string
}

func NewForm(cfg Config, api Uploader, email string, n notify.Notifier) (*Form, error) {
	if cfg.CategoryID == "" {
		return nil, ErrMissingCategory
	}
	if cfg.Mode == Version && cfg.ResourceID == "" {
		return nil, ErrMissingResource
	}
	if cfg.Mode == Initial {
		cfg.Destination = common.DefaultCategoryName
	}

	f := &Form{
		cfg:      cfg,
		api:      api,
		notifier: n,
		email:    email,
		now:      time.Now,
		Slots:    NewSlots(n),
	}
	if cfg.Mode != Version {
		f.Version = DefaultVersion
	}
	return f, nil
}

func (f *Form) Mode() Mode { return f.cfg.Mode }

func (f *Form) Destination() string { return f.cfg.Destination }

// Payload builds the request body from the current fields and the filled
// slots. Empty slots are left out entirely.
func (f *Form) Payload() *dto.UploadRequest {
	req := &dto.UploadRequest{
		Detail: dto.UploadDetail{
			Version:     f.Version,
			UploadDate:  f.now().UTC().Format(time.RFC3339),
			Email:       f.email,
			Description: f.Description,
		},
		Files: []dto.UploadFile{},
	}
	if f.cfg.Mode != Version {
		req.Name = f.Name
	}

	f.Slots.mu.Lock()
	defer f.Slots.mu.Unlock()
	for _, name := range SlotNames {
		if file, ok := f.Slots.files[name]; ok {
			req.Files = append(req.Files, dto.UploadFile{FileName: name, SvgFile: file.SVG})
		}
	}
	return req
}

// Submit sends the form with exactly one request and returns the category
// name to navigate to. On failure the form keeps its data.
func (f *Form) Submit(ctx context.Context) (string, error) {
	if f.cfg.Mode == Version && f.Version == "" {
		f.notifier.Error("Version is required.")
		return "", ErrMissingVersion
	}

	req := f.Payload()

	var (
		status int
		err    error
	)
	if f.cfg.Mode == Version {
		status, err = f.api.AddVersion(ctx, f.cfg.CategoryID, f.cfg.ResourceID, req)
	} else {
		status, err = f.api.CreateResource(ctx, f.cfg.CategoryID, req)
	}

	if err != nil {
		f.notifier.Error(UploadErrorMessage)
		return "", err
	}
	if status != http.StatusCreated {
		f.notifier.Error(UploadFailedMessage)
		return "", ErrUploadFailed
	}

	f.notifier.Success(UploadSuccessMessage)
	return f.cfg.Destination, nil
}

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/team-dbx/dbx/internal/client/client"
	"github.com/team-dbx/dbx/internal/client/config"
	"github.com/team-dbx/dbx/internal/client/controller"
	"github.com/team-dbx/dbx/internal/client/identity"
	"github.com/team-dbx/dbx/internal/client/notify"
	"github.com/team-dbx/dbx/internal/client/services"
	"github.com/team-dbx/dbx/internal/client/state"
	"github.com/team-dbx/dbx/internal/client/storage"
	"github.com/team-dbx/dbx/internal/dto"
	"github.com/team-dbx/dbx/internal/logging"
)

// gallery is the resource list as the REPL drives it.
type gallery interface {
	Open(ctx context.Context, name string) error
	Select(ctx context.Context, resourceID string) error
	Deselect()
	Refresh(ctx context.Context) error
	Delete(ctx context.Context, resourceID string) error
	View() controller.View
	Close()
}

type downloader interface {
	Download(ctx context.Context, fileURL string) (string, error)
}

// resourceAPI is what the console commands call directly, outside the
// gallery and the auth flow.
type resourceAPI interface {
	CreateResource(ctx context.Context, categoryID string, req *dto.UploadRequest) (int, error)
	AddVersion(ctx context.Context, categoryID, resourceID string, req *dto.UploadRequest) (int, error)
	ResourceVersions(ctx context.Context, categoryID, resourceID string) ([]dto.VersionRecord, error)
	ShareLink(categoryID, resourceID string) string
}

type App struct {
	config    *config.Config
	log       logging.Logger
	session   *state.Session
	registry  *state.CategoryRegistry
	notifier  notify.Notifier
	api       resourceAPI
	gallery   gallery
	auth      services.AuthService
	downloads downloader
	reader    *bufio.Reader
	out       io.Writer
}

// NewApp builds the console. The session and the category registry are
// created here once and handed to every component that needs them.
func NewApp(c *config.Config) (*App, error) {
	a := &App{
		config:   c,
		log:      logging.NewTextLogger(os.Stderr, c.LogLevel),
		session:  state.NewSession(),
		registry: state.NewCategoryRegistry(),
		notifier: notify.NewTerminal(os.Stdout),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}

	apiClient, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout, a.session)
	if err != nil {
		return nil, err
	}
	a.api = apiClient

	provider := identity.NewGoogleProvider(c.GoogleClientID, c.GoogleClientSecret, c.GoogleCallbackURL, a.promptCallback)
	a.auth = services.NewAuthService(provider, apiClient, a.session, a.registry, a.notifier, a.log)

	reader := storage.NewReader(storage.S3Settings{
		Region:          c.S3Region,
		Bucket:          c.S3Bucket,
		AccessKeyID:     c.S3AccessKeyID,
		SecretAccessKey: c.S3SecretAccessKey,
		BaseEndpoint:    c.S3BaseEndpoint,
	}, &http.Client{Timeout: c.RequestTimeout})
	a.downloads = services.NewDownloadService(reader, c.DownloadDir, a.notifier, a.log)

	a.gallery = controller.NewResourceList(apiClient, a.registry, a.session, a.notifier)
	return a, nil
}

// promptCallback shows the consent url and reads the redirect the browser
// landed on.
func (a *App) promptCallback(ctx context.Context, authURL string) (string, error) {
	fmt.Fprintf(a.out, "Open this link in your browser and sign in:\n\n  %s\n\n", authURL)
	return GetSecret(a.reader, "Paste the address you were redirected to", a.out)
}

func (a *App) isLoggedIn() bool {
	return a.session.LoggedIn()
}

func (a *App) Run(ctx context.Context) {
	defer a.gallery.Close()
	a.Root(ctx)
}

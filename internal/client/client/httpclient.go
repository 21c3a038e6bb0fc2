package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/team-dbx/dbx/internal/common"
	"github.com/team-dbx/dbx/internal/dto"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewHTTPClient validates baseURL and returns a client whose requests time
// out after timeout (0 disables the timeout).
func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenSource) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}, nil
}

func (c *HTTPClient) url(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func requireIDs(ids ...string) error {
	for _, id := range ids {
		if id == "" {
			return ErrMissingID
		}
	}
	return nil
}

// do sends in as JSON (when non-nil), decodes a 2xx body into out (when
// non-nil) and returns the status code.
func (c *HTTPClient) do(ctx context.Context, method, target string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, decodeStatusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, target, err)
		}
	}
	return resp.StatusCode, nil
}

func decodeStatusError(resp *http.Response) error {
	se := &StatusError{StatusCode: resp.StatusCode}
	var envelope dto.ErrorResponse
	if b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil && len(b) > 0 {
		if json.Unmarshal(b, &envelope) == nil && envelope.Error.Message != "" {
			se.Code, se.Message = envelope.Error.Code, envelope.Error.Message
		} else {
			se.Message = strings.TrimSpace(string(b))
		}
	}
	return se
}

func (c *HTTPClient) CategoriesURL() string {
	return c.url("categories")
}

// FetchCategories reads GET /categories from an absolute url; it is the
// getter used by the categories fetch hook.
func (c *HTTPClient) FetchCategories(ctx context.Context, url string) ([]dto.Category, error) {
	var out dto.CategoriesResponse
	if _, err := c.do(ctx, http.MethodGet, url, nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *HTTPClient) CategoryResources(ctx context.Context, categoryID string) ([]dto.ResourceSummary, error) {
	if err := requireIDs(categoryID); err != nil {
		return nil, err
	}
	var out dto.CategoryListResponse
	if _, err := c.do(ctx, http.MethodGet, c.url("categories", categoryID), nil, &out); err != nil {
		return nil, err
	}
	return out.CategoryList, nil
}

func (c *HTTPClient) Resource(ctx context.Context, categoryID, resourceID string) (*dto.ResourceDetail, error) {
	if err := requireIDs(categoryID, resourceID); err != nil {
		return nil, err
	}
	var out dto.ResourceDetail
	if _, err := c.do(ctx, http.MethodGet, c.url("categories", categoryID, "resources", resourceID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ResourceVersions(ctx context.Context, categoryID, resourceID string) ([]dto.VersionRecord, error) {
	if err := requireIDs(categoryID, resourceID); err != nil {
		return nil, err
	}
	var out dto.VersionsResponse
	if _, err := c.do(ctx, http.MethodGet, c.url("categories", categoryID, "resources", resourceID, "versions"), nil, &out); err != nil {
		return nil, err
	}
	return out.Versions, nil
}

// CreateResource posts a new resource. The status code is returned for
// every answer the server gave, so callers can tell 201 from other 2xx.
func (c *HTTPClient) CreateResource(ctx context.Context, categoryID string, req *dto.UploadRequest) (int, error) {
	if err := requireIDs(categoryID); err != nil {
		return 0, err
	}
	return c.do(ctx, http.MethodPost, c.url("categories", categoryID, "resource"), req, nil)
}

func (c *HTTPClient) AddVersion(ctx context.Context, categoryID, resourceID string, req *dto.UploadRequest) (int, error) {
	if err := requireIDs(categoryID, resourceID); err != nil {
		return 0, err
	}
	return c.do(ctx, http.MethodPost, c.url("categories", categoryID, "resources", resourceID, "version"), req, nil)
}

// DeleteResource returns the server's "result" field.
func (c *HTTPClient) DeleteResource(ctx context.Context, categoryID, resourceID string) (string, error) {
	if err := requireIDs(categoryID, resourceID); err != nil {
		return "", err
	}
	var out dto.ResultResponse
	if _, err := c.do(ctx, http.MethodDelete, c.url("categories", categoryID, "resources", resourceID), nil, &out); err != nil {
		return "", err
	}
	return out.Result, nil
}

func (c *HTTPClient) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	if _, err := c.do(ctx, http.MethodPost, c.url("login"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) InitialSetting(ctx context.Context) ([]dto.Category, error) {
	var out dto.CategoriesResponse
	if _, err := c.do(ctx, http.MethodPost, c.url("initialSetting"), nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// ShareLink is the public address of a resource handed out by "copy link".
func (c *HTTPClient) ShareLink(categoryID, resourceID string) string {
	return c.url("dbx", "categories", categoryID, "resources", resourceID)
}

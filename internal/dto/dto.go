// Package dto defines the JSON bodies exchanged between the console and the
// Resource API.
package dto

// Category is a named bucket of resources.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoriesResponse is the body of GET /categories and POST /initialSetting.
type CategoriesResponse struct {
	Categories []Category `json:"categories"`
}

// ResourceSummary is one gallery tile; SvgURL points at the default file.
type ResourceSummary struct {
	ID      string `json:"id"`
	SvgURL  string `json:"svgUrl"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// CategoryListResponse is the body of GET /categories/{categoryId}.
type CategoryListResponse struct {
	CategoryList []ResourceSummary `json:"categoryList"`
}

// FileRecord is one stored variant of a resource.
type FileRecord struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	SvgURL   string `json:"svgUrl"`
	PngURL   string `json:"pngUrl"`
}

// ResourceDetail is the body of GET /categories/{cid}/resources/{rid}.
type ResourceDetail struct {
	CategoryName string       `json:"categoryName"`
	AuthorName   string       `json:"authorName"`
	ResourceName string       `json:"resourceName"`
	UploadDate   string       `json:"uploadDate"`
	Version      string       `json:"version"`
	Files        []FileRecord `json:"files"`
}

// VersionRecord is one entry of a resource's version history.
type VersionRecord struct {
	ID          string       `json:"id"`
	Version     string       `json:"version"`
	UploadDate  string       `json:"uploadDate"`
	AuthorName  string       `json:"authorName"`
	Description string       `json:"description"`
	Files       []FileRecord `json:"files"`
}

// VersionsResponse is the body of GET .../resources/{rid}/versions.
type VersionsResponse struct {
	Versions []VersionRecord `json:"versions"`
}

// UploadDetail is the metadata part of an upload.
type UploadDetail struct {
	Version     string `json:"version"`
	UploadDate  string `json:"uploadDate"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

// UploadFile carries one slot's inline SVG text.
type UploadFile struct {
	FileName string `json:"fileName"`
	SvgFile  string `json:"svgFile"`
}

// UploadRequest is the body of both the create and the version endpoints.
// Name is absent from version uploads.
type UploadRequest struct {
	Name   string       `json:"name,omitempty"`
	Detail UploadDetail `json:"detail"`
	Files  []UploadFile `json:"files"`
}

// UploadResponse is answered with 201 by both upload endpoints.
type UploadResponse struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

// ResultResponse is the body of DELETE .../resources/{rid}.
type ResultResponse struct {
	Result string `json:"result"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
	Login   bool   `json:"login"`
}

// LoginResponse is the body answered by POST /login.
type LoginResponse struct {
	IsInitialUser bool   `json:"isInitialUser"`
	Result        string `json:"result"`
}

// ErrorResponse is the envelope of every non-2xx server answer.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

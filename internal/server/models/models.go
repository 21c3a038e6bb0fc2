// Package models defines server-side data models persisted in the database.
package models

import "time"

// Category is a named bucket of resources. Position orders the category bar.
type Category struct {
	ID       string
	Name     string
	Position int
}

type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

// Resource is one asset family. CurrentVersionID points at the version the
// gallery shows.
type Resource struct {
	ID               string
	CategoryID       string
	Name             string
	AuthorID         string
	CurrentVersionID string
	CreatedAt        time.Time
}

// Version is one uploaded revision of a resource with its files.
type Version struct {
	ID          string
	ResourceID  string
	Version     string
	Description string
	AuthorID    string
	// AuthorName is filled by reads that join users.
	AuthorName string
	UploadDate time.Time
	Files      []File
}

// File is one named variant of a version. The keys locate the blobs in
// object storage; PngKey is empty when no raster was produced.
type File struct {
	ID        string
	VersionID string
	FileName  string
	SvgKey    string
	PngKey    string
	Position  int
}

// ResourceSummary is a gallery row: the resource with its current version
// and the SVG key of its default file.
type ResourceSummary struct {
	ID      string
	Name    string
	Version string
	SvgKey  string
}

// ResourceDetail is the detail panel of a resource at its current version.
type ResourceDetail struct {
	ResourceID   string
	CategoryName string
	AuthorName   string
	ResourceName string
	UploadDate   time.Time
	Version      string
	VersionID    string
}

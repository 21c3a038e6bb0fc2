// Package services contains the Resource API business logic: sign-in and
// user bootstrap, the category bar, and the resource upload, versioning,
// listing and deletion pipeline.
//
// Services return the sentinel errors of internal/common (ErrorNotFound,
// ErrorValidation, ErrorUnauthorized, ErrInvalidToken, ErrEmailMismatch),
// wrapped with detail, so the HTTP layer can map them with errors.Is.
package services

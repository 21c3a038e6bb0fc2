// Package common contains shared constants and sentinel errors used across
// the console and the Resource API server.
package common

// AuthorizationHeaderName carries the identity token on API requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

// DefaultCategoryName is the landing category of the gallery.
const DefaultCategoryName = "BrandLogo"

// ResultOK is the value of the "result" field of a successful login or delete.
const ResultOK = "OK"

// ResultFail is answered by the server when a delete did not remove anything.
const ResultFail = "FAIL"

// FileNames is the file-name vocabulary of a resource, in payload order.
var FileNames = []string{"default", "darkmode", "1.5x", "2x", "3x", "4x"}

// IsFileName reports whether name belongs to FileNames.
func IsFileName(name string) bool {
	for _, n := range FileNames {
		if n == name {
			return true
		}
	}
	return false
}

// Package controller implements the resource gallery: it makes sure the
// category registry is loaded, resolves the route's category name to an id,
// fetches that category's resources, tracks the selected resource and
// re-fetches after mutations.
//
// Every resource and detail request is stamped with a token. A response whose
// token (or category) no longer matches the current route is dropped, so a
// slow category can never overwrite a newer one.
package controller

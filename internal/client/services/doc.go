// Package services contains the console's application services: signing in
// and out against the identity provider and the Resource API, and saving
// stored asset files to disk.
package services

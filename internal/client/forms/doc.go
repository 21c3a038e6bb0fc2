// Package forms builds and submits the upload payloads of the console.
//
// All three forms (the first-login bootstrap form, the new-resource form and
// the new-version form) are one Form configured by Mode. They share a single
// Slots value that validates files when they are selected and keeps their
// SVG text until submit.
package forms

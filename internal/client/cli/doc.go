// Package cli provides the interactive DBX console.
//
// It wires configuration, the Resource API client, the identity provider,
// the shared session and category stores, and a REPL whose commands play the
// part of the product's screens: the login screen, the gallery with its
// category bar and detail panel, and the upload forms.
//
// Typical flow: login (browser consent, paste the redirect back), land on
// the BrandLogo gallery (or the bootstrap upload form on a first login),
// then open categories, select resources, download files or upload new
// resources and versions.
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli

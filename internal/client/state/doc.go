// Package state holds the two pieces of process-wide client state: the
// category registry and the session. Both are constructed once by the
// application and handed by pointer to every component that needs them;
// there is no package-level instance.
//
// Mutation happens only through the documented setters. Both stores are
// safe for concurrent use.
package state

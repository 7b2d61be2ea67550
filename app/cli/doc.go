// Package cli implements portalctl, a command line client for the member
// portal API.
//
// The session record lives in a JSON file under the user's config directory.
// Hydration starts in the background as soon as the command line is parsed
// and every guarded command waits for it before consulting the same route
// rules the portal server uses.
package cli

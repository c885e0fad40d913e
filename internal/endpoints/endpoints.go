// Package endpoints constructs the console control-plane URLs. The console
// exposes the SSO API under the regional single-sign-on host; the account,
// user, and group list endpoints historically live on the eu-west-1 host
// regardless of the session region, so the resolver keeps two bases. Both
// can be overridden, which is how tests point the client at a scripted
// backend.
package endpoints

import "fmt"

const (
	// apiBasePattern is the regional console SSO API base.
	apiBasePattern = "https://%s.console.aws.amazon.com/singlesignon/api"

	// DefaultListBase is the fixed host serving the organizations,
	// identitystore, and userpool list endpoints.
	DefaultListBase = "https://eu-west-1.console.aws.amazon.com/singlesignon/api"
)

// Resolver produces the per-service console URLs for one session.
type Resolver struct {
	apiBase  string
	listBase string
}

// New creates a Resolver for region with the default console hosts.
func New(region string) *Resolver {
	return NewWithBases(fmt.Sprintf(apiBasePattern, region), DefaultListBase)
}

// NewWithBases creates a Resolver with explicit bases. Empty values fall
// back to nothing; callers pass fully formed bases without a trailing slash.
func NewWithBases(apiBase, listBase string) *Resolver {
	return &Resolver{apiBase: apiBase, listBase: listBase}
}

// API returns the regional API base.
func (r *Resolver) API() string {
	return r.apiBase
}

// Peregrine returns the combined control-plane endpoint serving the
// switchboard (permission set and profile) operations.
func (r *Resolver) Peregrine() string {
	return r.apiBase + "/peregrine"
}

// UserPool returns the regional userpool endpoint used by directory, group
// member, and user group calls.
func (r *Resolver) UserPool() string {
	return r.apiBase + "/userpool"
}

// Organizations returns the fixed-host endpoint for the account list.
func (r *Resolver) Organizations() string {
	return r.listBase + "/organizations"
}

// IdentityStore returns the fixed-host endpoint for the user list.
func (r *Resolver) IdentityStore() string {
	return r.listBase + "/identitystore"
}

// ListUserPool returns the fixed-host userpool endpoint for the group list.
func (r *Resolver) ListUserPool() string {
	return r.listBase + "/userpool"
}

// Package payload builds the JSON request envelopes sent to the AWS SSO
// console control-plane endpoints. Every request carries the same wrapper
// shape: the serialized operation body, routing headers, and the operation
// name, which must be a member of the fixed allow-list the console API
// accepts. The envelope field names and the target-to-header mapping are a
// wire contract with the remote service and must be reproduced verbatim.
package payload

import (
	"encoding/json"
	"fmt"
)

const (
	// DefaultRegion is the region stamped on envelopes when the caller
	// does not supply one.
	DefaultRegion = "eu-west-1"

	// ContentType and ContentEncoding are the values the console frontend
	// sends on every control-plane call.
	ContentType     = "application/json; charset=UTF-8"
	ContentEncoding = "amz-1.0"
)

// supportedTargets is the fixed allow-list of operation names the console
// control-plane accepts. Requests for any other target are rejected locally
// before a network call is made.
var supportedTargets = map[string]struct{}{
	"GetUserPoolInfo":                                   {},
	"SearchGroups":                                      {},
	"ProvisionApplicationInstanceForAWSAccount":         {},
	"ListPermissionSets":                                {},
	"GetApplicationInstanceForAWSAccount":               {},
	"ProvisionApplicationProfileForAWSAccountInstance":  {},
	"AssociateProfile":                                  {},
	"ListAWSAccountProfiles":                            {},
	"DisassociateProfile":                               {},
	"SearchUsers":                                       {},
	"ListMembersInGroup":                                {},
	"ListGroupsForUser":                                 {},
	"CreatePermissionSet":                               {},
	"PutPermissionsPolicy":                              {},
	"GetPermissionsPolicy":                              {},
	"ListAccountsWithProvisionedPermissionSet":          {},
	"UpdatePermissionSet":                               {},
}

// UnsupportedTargetError is returned when a caller requests an operation
// name outside the allow-list. It is raised before any network activity.
type UnsupportedTargetError struct {
	Target string
}

func (e *UnsupportedTargetError) Error() string {
	return fmt.Sprintf("unsupported target %q", e.Target)
}

// Headers carries the routing headers embedded in the envelope.
type Headers struct {
	ContentType     string `json:"Content-Type"`
	ContentEncoding string `json:"Content-Encoding"`
	XAmzTarget      string `json:"X-Amz-Target"`
	XAmzUserAgent   string `json:"X-Amz-User-Agent,omitempty"`
}

// Envelope is the JSON request wrapper posted to the control-plane
// endpoints. ContentString holds the operation body serialized as a JSON
// string, not as a nested object.
type Envelope struct {
	ContentString string            `json:"contentString"`
	Headers       Headers           `json:"headers"`
	Method        string            `json:"method"`
	Operation     string            `json:"operation"`
	Params        map[string]string `json:"params"`
	Path          string            `json:"path"`
	Region        string            `json:"region"`
}

// Options carries the optional routing metadata for Build. Zero values are
// replaced with the console defaults.
type Options struct {
	Method          string
	Params          map[string]string
	Path            string
	ContentType     string
	ContentEncoding string
	XAmzTarget      string
	Region          string
}

// Build validates the target against the allow-list, serializes content as
// the envelope's contentString, and returns a fresh envelope. The returned
// envelope shares no state with caller-supplied maps: params are copied and
// content is serialized at build time, so later mutation by the caller does
// not affect the envelope.
func Build(content any, target string, opts Options) (*Envelope, error) {
	if _, ok := supportedTargets[target]; !ok {
		return nil, &UnsupportedTargetError{Target: target}
	}

	if content == nil {
		content = map[string]any{}
	}
	data, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("serialize content for %s: %w", target, err)
	}

	params := make(map[string]string, len(opts.Params))
	for k, v := range opts.Params {
		params[k] = v
	}

	env := &Envelope{
		ContentString: string(data),
		Headers: Headers{
			ContentType:     opts.ContentType,
			ContentEncoding: opts.ContentEncoding,
			XAmzTarget:      opts.XAmzTarget,
		},
		Method:    opts.Method,
		Operation: target,
		Params:    params,
		Path:      opts.Path,
		Region:    opts.Region,
	}
	if env.Method == "" {
		env.Method = "POST"
	}
	if env.Path == "" {
		env.Path = "/"
	}
	if env.Headers.ContentType == "" {
		env.Headers.ContentType = ContentType
	}
	if env.Headers.ContentEncoding == "" {
		env.Headers.ContentEncoding = ContentEncoding
	}
	if env.Region == "" {
		env.Region = DefaultRegion
	}
	return env, nil
}

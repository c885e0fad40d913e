package awssso

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/schubergphilis/awssso-go/internal/pagination"
)

// permissionSetRecord mirrors one item of the switchboard permission set
// list. CreationDate arrives as epoch milliseconds.
type permissionSetRecord struct {
	ID           string      `json:"Id"`
	Name         string      `json:"Name"`
	Description  string      `json:"Description"`
	TTL          string      `json:"ttl"`
	RelayState   string      `json:"relayState"`
	CreationDate json.Number `json:"CreationDate"`
}

// PermissionSet is a read-only view over one SSO permission set. Update
// and AssignCustomPolicy mutate the remote object, never the view; list
// the permission sets again to observe the change.
type PermissionSet struct {
	sso *Sso
	rec permissionSetRecord
}

func newPermissionSet(sso *Sso, raw json.RawMessage) (*PermissionSet, error) {
	var rec permissionSetRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode permission set: %w", err)
	}
	return &PermissionSet{sso: sso, rec: rec}, nil
}

// ID returns the permission set id.
func (p *PermissionSet) ID() string { return p.rec.ID }

// Name returns the permission set name.
func (p *PermissionSet) Name() string { return p.rec.Name }

// Description returns the permission set description.
func (p *PermissionSet) Description() string { return p.rec.Description }

// TTL returns the session duration, e.g. PT2H.
func (p *PermissionSet) TTL() string { return p.rec.TTL }

// RelayState returns the relay state URL.
func (p *PermissionSet) RelayState() string { return p.rec.RelayState }

// CreationDate returns the creation timestamp as epoch milliseconds.
func (p *PermissionSet) CreationDate() string { return p.rec.CreationDate.String() }

// PermissionPolicy fetches the permissions policy attached to the set. A
// non-OK response is logged and yields nil, not an error.
func (p *PermissionSet) PermissionPolicy(ctx context.Context) (json.RawMessage, error) {
	env, err := payloadForControl(map[string]any{"permissionSetId": p.rec.ID}, "GetPermissionsPolicy")
	if err != nil {
		return nil, err
	}

	resp, err := p.sso.call(ctx, "control", p.sso.endpoints.Peregrine(), env)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, nil
	}
	return json.RawMessage(resp.Body), nil
}

// ProvisionedAccounts returns the accounts this permission set is
// provisioned on. The id list paginates over a marker cursor; each id is
// then resolved through a full account list scan. Fetch failures inside
// the pagination loop are errors, unlike the other related-collection
// accessors.
func (p *PermissionSet) ProvisionedAccounts(ctx context.Context) ([]*Account, error) {
	it := pagination.NewIterator(p.sso.session, p.sso.logger, pagination.Config{
		URL: p.sso.endpoints.Peregrine(),
		Build: func(cursor string) (any, error) {
			content := map[string]any{
				"permissionSetId": p.rec.ID,
				"onlyOutOfSync":   "false",
			}
			if cursor != "" {
				content["marker"] = cursor
			}
			return payloadForControl(content, "ListAccountsWithProvisionedPermissionSet")
		},
		ItemsField:  "accountIds",
		CursorField: "marker",
		Service:     "control",
		Operation:   "ListAccountsWithProvisionedPermissionSet",
	})

	items, err := it.All(ctx)
	if err != nil {
		return nil, err
	}

	accounts := make([]*Account, 0, len(items))
	for _, raw := range items {
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return nil, fmt.Errorf("decode provisioned account id: %w", err)
		}
		account, err := p.sso.GetAccountByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if account != nil {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

// AssignCustomPolicy attaches a custom policy document to the permission
// set. The document is serialized into the request body as a JSON string.
// Returns whether the control-plane accepted the call; a non-OK response
// is logged, not an error.
func (p *PermissionSet) AssignCustomPolicy(ctx context.Context, policyDocument any) (bool, error) {
	doc, err := json.Marshal(policyDocument)
	if err != nil {
		return false, fmt.Errorf("serialize policy document: %w", err)
	}

	env, err := payloadForControl(map[string]any{
		"permissionSetId": p.rec.ID,
		"policyDocument":  string(doc),
	}, "PutPermissionsPolicy")
	if err != nil {
		return false, err
	}

	resp, err := p.sso.call(ctx, "control", p.sso.endpoints.Peregrine(), env)
	if err != nil {
		return false, err
	}
	return resp.OK(), nil
}

// UpdatePermissionSetOptions carries the fields Update can change. Zero
// values keep the permission set's current value.
type UpdatePermissionSetOptions struct {
	Description string
	RelayState  string
	TTL         string
}

// Update changes the permission set's description, relay state, or session
// duration. Returns whether the control-plane accepted the call; a non-OK
// response is logged, not an error.
func (p *PermissionSet) Update(ctx context.Context, opts UpdatePermissionSetOptions) (bool, error) {
	if opts.Description == "" {
		opts.Description = p.rec.Description
	}
	if opts.RelayState == "" {
		opts.RelayState = p.rec.RelayState
	}
	if opts.TTL == "" {
		opts.TTL = p.rec.TTL
	}

	env, err := payloadForControl(map[string]any{
		"permissionSetId": p.rec.ID,
		"description":     opts.Description,
		"relayState":      opts.RelayState,
		"ttl":             opts.TTL,
	}, "UpdatePermissionSet")
	if err != nil {
		return false, err
	}

	resp, err := p.sso.call(ctx, "control", p.sso.endpoints.Peregrine(), env)
	if err != nil {
		return false, err
	}
	return resp.OK(), nil
}

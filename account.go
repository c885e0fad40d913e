package awssso

import (
	"context"
	"encoding/json"
	"fmt"
)

// accountRecord mirrors one item of the Organizations account list.
type accountRecord struct {
	ID     string `json:"Id"`
	ARN    string `json:"Arn"`
	Email  string `json:"Email"`
	Name   string `json:"Name"`
	Status string `json:"Status"`
}

// Account is a read-only view over one AWS account known to SSO. Identity
// fields are fixed at construction; only the resolved application instance
// id is memoized after its first fetch.
type Account struct {
	sso        *Sso
	rec        accountRecord
	instanceID string
}

func newAccount(sso *Sso, raw json.RawMessage) (*Account, error) {
	var rec accountRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return &Account{sso: sso, rec: rec}, nil
}

// ID returns the AWS account id.
func (a *Account) ID() string { return a.rec.ID }

// Name returns the account name.
func (a *Account) Name() string { return a.rec.Name }

// Email returns the account root email.
func (a *Account) Email() string { return a.rec.Email }

// ARN returns the account ARN.
func (a *Account) ARN() string { return a.rec.ARN }

// Status returns the account status.
func (a *Account) Status() string { return a.rec.Status }

// InstanceID resolves the application instance id backing this account in
// SSO. The result is memoized on the view; a fresh Account resolves again.
func (a *Account) InstanceID(ctx context.Context) (string, error) {
	if a.instanceID != "" {
		return a.instanceID, nil
	}

	env, err := payloadForControl(map[string]any{"awsAccountId": a.rec.ID}, "GetApplicationInstanceForAWSAccount")
	if err != nil {
		return "", err
	}

	resp, err := a.sso.call(ctx, "control", a.sso.endpoints.Peregrine(), env)
	if err != nil {
		return "", err
	}

	var out struct {
		ApplicationInstance struct {
			InstanceID string `json:"instanceId"`
		} `json:"applicationInstance"`
	}
	if err := resp.JSON(&out); err != nil {
		return "", err
	}
	a.instanceID = out.ApplicationInstance.InstanceID
	return a.instanceID, nil
}

// Profile is an association record binding a permission set to an account
// instance.
type Profile struct {
	ID   string `json:"profileId"`
	Name string `json:"name"`
}

// AssociatedProfiles lists the application profiles provisioned on this
// account. A non-OK response is logged and yields an empty list, not an
// error.
func (a *Account) AssociatedProfiles(ctx context.Context) ([]Profile, error) {
	instanceID, err := a.InstanceID(ctx)
	if err != nil {
		return nil, err
	}

	env, err := payloadForControl(map[string]any{"instanceId": instanceID}, "ListAWSAccountProfiles")
	if err != nil {
		return nil, err
	}

	resp, err := a.sso.call(ctx, "control", a.sso.endpoints.Peregrine(), env)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return []Profile{}, nil
	}

	var out struct {
		ProfileList []Profile `json:"profileList"`
	}
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	if out.ProfileList == nil {
		return []Profile{}, nil
	}
	return out.ProfileList, nil
}

package awssso

import (
	"context"
	"encoding/json"
	"fmt"
)

// attributeValue is the userpool wrapper around a scalar attribute.
type attributeValue struct {
	StringValue string `json:"StringValue"`
}

// emailAttribute is one entry of the userpool emails attribute list.
type emailAttribute struct {
	ComplexValue struct {
		Value   attributeValue `json:"value"`
		Type    attributeValue `json:"type"`
		Primary struct {
			BooleanValue bool `json:"BooleanValue"`
		} `json:"primary"`
	} `json:"ComplexValue"`
}

// userRecord mirrors one item of the identitystore user search. The
// interesting fields hide behind the userpool attribute wrappers, so the
// whole nested shape is decoded up front.
type userRecord struct {
	UserID   string `json:"UserId"`
	UserName string `json:"UserName"`
	Active   bool   `json:"Active"`
	Meta     struct {
		CreatedAt string `json:"CreatedAt"`
		UpdatedAt string `json:"UpdatedAt"`
	} `json:"Meta"`
	UserAttributes struct {
		DisplayName attributeValue `json:"displayName"`
		Name        struct {
			ComplexValue struct {
				GivenName  attributeValue `json:"givenName"`
				FamilyName attributeValue `json:"familyName"`
			} `json:"ComplexValue"`
		} `json:"name"`
		Emails struct {
			ComplexListValue []emailAttribute `json:"ComplexListValue"`
		} `json:"emails"`
	} `json:"UserAttributes"`
}

// UserEmail is one email address attached to a user.
type UserEmail struct {
	Value   string
	Type    string
	Primary bool
}

// User is a read-only view over one SSO user.
type User struct {
	sso *Sso
	rec userRecord
}

func newUser(sso *Sso, raw json.RawMessage) (*User, error) {
	var rec userRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &User{sso: sso, rec: rec}, nil
}

// ID returns the user id.
func (u *User) ID() string { return u.rec.UserID }

// Name returns the user name.
func (u *User) Name() string { return u.rec.UserName }

// Active reports whether the user is active.
func (u *User) Active() bool { return u.rec.Active }

// DisplayName returns the user's display name.
func (u *User) DisplayName() string {
	return u.rec.UserAttributes.DisplayName.StringValue
}

// FirstName returns the user's given name.
func (u *User) FirstName() string {
	return u.rec.UserAttributes.Name.ComplexValue.GivenName.StringValue
}

// LastName returns the user's family name.
func (u *User) LastName() string {
	return u.rec.UserAttributes.Name.ComplexValue.FamilyName.StringValue
}

// CreatedAt returns when the user was created.
func (u *User) CreatedAt() string { return u.rec.Meta.CreatedAt }

// UpdatedAt returns when the user last changed.
func (u *User) UpdatedAt() string { return u.rec.Meta.UpdatedAt }

// Emails returns the user's email addresses.
func (u *User) Emails() []UserEmail {
	emails := make([]UserEmail, 0, len(u.rec.UserAttributes.Emails.ComplexListValue))
	for _, e := range u.rec.UserAttributes.Emails.ComplexListValue {
		emails = append(emails, UserEmail{
			Value:   e.ComplexValue.Value.StringValue,
			Type:    e.ComplexValue.Type.StringValue,
			Primary: e.ComplexValue.Primary.BooleanValue,
		})
	}
	return emails
}

// Groups lists the groups the user belongs to. A non-OK response is logged
// and yields an empty list, not an error.
func (u *User) Groups(ctx context.Context) ([]*Group, error) {
	env, err := payloadForUserPool(map[string]any{
		"UserId":     u.rec.UserID,
		"MaxResults": 100,
	}, "ListGroupsForUser")
	if err != nil {
		return nil, err
	}

	resp, err := u.sso.call(ctx, "userpool", u.sso.endpoints.UserPool(), env)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return []*Group{}, nil
	}

	var out struct {
		Groups []json.RawMessage `json:"Groups"`
	}
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}

	groups := make([]*Group, 0, len(out.Groups))
	for _, raw := range out.Groups {
		group, err := newGroup(u.sso, raw)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

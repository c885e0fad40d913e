package awssso

import (
	"context"
	"encoding/json"
	"fmt"
)

// groupRecord mirrors one item of the userpool group search.
type groupRecord struct {
	ID          string `json:"GroupId"`
	Name        string `json:"GroupName"`
	Description string `json:"Description"`
}

// Group is a read-only view over one SSO group.
type Group struct {
	sso *Sso
	rec groupRecord
}

func newGroup(sso *Sso, raw json.RawMessage) (*Group, error) {
	var rec groupRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode group: %w", err)
	}
	return &Group{sso: sso, rec: rec}, nil
}

// ID returns the group id.
func (g *Group) ID() string { return g.rec.ID }

// Name returns the group name.
func (g *Group) Name() string { return g.rec.Name }

// Description returns the group description.
func (g *Group) Description() string { return g.rec.Description }

// Members lists the users in the group. A non-OK response is logged and
// yields an empty list, not an error.
func (g *Group) Members(ctx context.Context) ([]*User, error) {
	env, err := payloadForUserPool(map[string]any{
		"GroupId":    g.rec.ID,
		"MaxResults": 100,
	}, "ListMembersInGroup")
	if err != nil {
		return nil, err
	}

	resp, err := g.sso.call(ctx, "userpool", g.sso.endpoints.UserPool(), env)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return []*User{}, nil
	}

	var out struct {
		Members []json.RawMessage `json:"Members"`
	}
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}

	members := make([]*User, 0, len(out.Members))
	for _, raw := range out.Members {
		member, err := newUser(g.sso, raw)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, nil
}

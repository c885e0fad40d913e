package awssso

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestGroupAccessors(t *testing.T) {
	raw := json.RawMessage(`{"GroupId":"g-1","GroupName":"admins","Description":"ops team"}`)

	group, err := newGroup(&Sso{}, raw)
	if err != nil {
		t.Fatalf("newGroup() error: %v", err)
	}
	if group.ID() != "g-1" || group.Name() != "admins" || group.Description() != "ops team" {
		t.Errorf("group = %s/%s/%s", group.ID(), group.Name(), group.Description())
	}
}

func TestGroupMembers(t *testing.T) {
	backend := &scriptedBackend{
		respond: func(call recordedCall) (int, string) {
			if call.Envelope.Operation != "ListMembersInGroup" {
				return http.StatusNotFound, `{}`
			}
			return http.StatusOK, `{"Members":[{"UserId":"u-1","UserName":"jdoe"},{"UserId":"u-2","UserName":"asmith"}]}`
		},
	}
	sso := newTestSso(t, backend)

	group, _ := newGroup(sso, json.RawMessage(`{"GroupId":"g-1","GroupName":"admins"}`))
	members, err := group.Members(context.Background())
	if err != nil {
		t.Fatalf("Members() error: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("Members() returned %d users, want 2", len(members))
	}
	if members[0].Name() != "jdoe" || members[1].Name() != "asmith" {
		t.Errorf("members = %s, %s", members[0].Name(), members[1].Name())
	}

	content := contentOf(t, backend.last("ListMembersInGroup").Envelope)
	if content["GroupId"] != "g-1" {
		t.Errorf("GroupId = %v", content["GroupId"])
	}
}

func TestGroupMembersDeniedYieldsEmpty(t *testing.T) {
	backend := &scriptedBackend{
		respond: func(call recordedCall) (int, string) {
			return http.StatusForbidden, `{"message":"denied"}`
		},
	}
	sso := newTestSso(t, backend)

	group, _ := newGroup(sso, json.RawMessage(`{"GroupId":"g-1"}`))
	members, err := group.Members(context.Background())
	if err != nil {
		t.Fatalf("Members() error: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("Members() = %+v, want empty", members)
	}
}

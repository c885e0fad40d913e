package awssso

import (
	"context"
	"net/http"
	"strings"
	"testing"
)

// associationBackend serves every operation the association workflows
// touch against a fixed directory of one account, user, group, and
// permission set.
func associationBackend(respond func(call recordedCall) (int, string, bool)) *scriptedBackend {
	backend := &scriptedBackend{}
	backend.respond = func(call recordedCall) (int, string) {
		if respond != nil {
			if status, body, handled := respond(call); handled {
				return status, body
			}
		}
		switch call.Envelope.Operation {
		case "listAccounts":
			return http.StatusOK, `{"Accounts":[{"Id":"111111111111","Name":"dev"}]}`
		case "GetUserPoolInfo":
			return http.StatusOK, `{"DirectoryId":"d-1"}`
		case "SearchUsers":
			return http.StatusOK, `{"Users":[{"UserId":"u-1","UserName":"jdoe",
				"UserAttributes":{"name":{"ComplexValue":{"givenName":{"StringValue":"John"},"familyName":{"StringValue":"Doe"}}}}}]}`
		case "SearchGroups":
			return http.StatusOK, `{"Groups":[{"GroupId":"g-1","GroupName":"admins"}]}`
		case "ListPermissionSets":
			return http.StatusOK, `{"permissionSets":[{"Id":"ps-1","Name":"ReadOnly"}]}`
		case "GetApplicationInstanceForAWSAccount":
			return http.StatusOK, `{"applicationInstance":{"instanceId":"ins-1"}}`
		case "ProvisionApplicationProfileForAWSAccountInstance":
			return http.StatusOK, `{"applicationProfile":{"profileId":"p-1"}}`
		case "ListAWSAccountProfiles":
			return http.StatusOK, `{"profileList":[{"profileId":"p-1","name":"ReadOnly"}]}`
		case "AssociateProfile", "DisassociateProfile":
			return http.StatusOK, `{}`
		}
		return http.StatusNotFound, `{}`
	}
	return backend
}

func TestAssociateUserToAccount(t *testing.T) {
	backend := associationBackend(nil)
	sso := newTestSso(t, backend)

	ok, err := sso.AssociateUserToAccount(context.Background(), "jdoe", "dev", "ReadOnly")
	if err != nil {
		t.Fatalf("AssociateUserToAccount() error: %v", err)
	}
	if !ok {
		t.Fatal("AssociateUserToAccount() = false, want true")
	}

	if n := backend.count("ProvisionApplicationProfileForAWSAccountInstance"); n != 1 {
		t.Errorf("provisioning calls = %d, want 1", n)
	}

	call := backend.last("AssociateProfile")
	if call == nil {
		t.Fatal("no AssociateProfile call recorded")
	}
	if call.Path != "/peregrine" {
		t.Errorf("request path = %s, want /peregrine", call.Path)
	}
	if got := call.Envelope.Headers.XAmzTarget; got != "com.amazon.switchboard.service.SWBService.AssociateProfile" {
		t.Errorf("X-Amz-Target = %s", got)
	}
	content := contentOf(t, call.Envelope)
	if content["accessorId"] != "u-1" || content["accessorType"] != "USER" {
		t.Errorf("accessor = %v/%v", content["accessorId"], content["accessorType"])
	}
	if content["instanceId"] != "ins-1" || content["profileId"] != "p-1" {
		t.Errorf("instance/profile = %v/%v", content["instanceId"], content["profileId"])
	}
	if content["directoryType"] != "UserPool" || content["directoryId"] != "d-1" {
		t.Errorf("directory = %v/%v", content["directoryType"], content["directoryId"])
	}
	display, _ := content["accessorDisplay"].(map[string]any)
	if display["userName"] != "jdoe" || display["windowsUpn"] != "jdoe" {
		t.Errorf("accessorDisplay = %v", display)
	}
	if display["firstName"] != "John" || display["last_name"] != "Doe" {
		t.Errorf("accessorDisplay names = %v", display)
	}
}

func TestAssociateGroupToAccount(t *testing.T) {
	backend := associationBackend(nil)
	sso := newTestSso(t, backend)

	ok, err := sso.AssociateGroupToAccount(context.Background(), "admins", "dev", "ReadOnly")
	if err != nil {
		t.Fatalf("AssociateGroupToAccount() error: %v", err)
	}
	if !ok {
		t.Fatal("AssociateGroupToAccount() = false, want true")
	}

	content := contentOf(t, backend.last("AssociateProfile").Envelope)
	if content["accessorId"] != "g-1" || content["accessorType"] != "GROUP" {
		t.Errorf("accessor = %v/%v", content["accessorId"], content["accessorType"])
	}
	display, _ := content["accessorDisplay"].(map[string]any)
	if display["groupName"] != "admins" {
		t.Errorf("accessorDisplay = %v", display)
	}
}

func TestAssociateGroupToAccountRejected(t *testing.T) {
	backend := associationBackend(func(call recordedCall) (int, string, bool) {
		if call.Envelope.Operation == "AssociateProfile" {
			return http.StatusForbidden, `{"message":"denied"}`, true
		}
		return 0, "", false
	})
	sso := newTestSso(t, backend)

	ok, err := sso.AssociateGroupToAccount(context.Background(), "admins", "dev", "ReadOnly")
	if err != nil {
		t.Fatalf("AssociateGroupToAccount() error: %v", err)
	}
	if ok {
		t.Fatal("AssociateGroupToAccount() = true, want false on rejected call")
	}
	// The profile was provisioned before the association was refused.
	if n := backend.count("ProvisionApplicationProfileForAWSAccountInstance"); n != 1 {
		t.Errorf("provisioning calls = %d, want 1", n)
	}
}

func TestAssociateGroupToAccountUnknownGroup(t *testing.T) {
	backend := associationBackend(func(call recordedCall) (int, string, bool) {
		if call.Envelope.Operation == "SearchGroups" {
			return http.StatusOK, `{"Groups":[]}`, true
		}
		return 0, "", false
	})
	sso := newTestSso(t, backend)

	_, err := sso.AssociateGroupToAccount(context.Background(), "ghosts", "dev", "ReadOnly")
	if err == nil || !strings.Contains(err.Error(), "ghosts") {
		t.Fatalf("AssociateGroupToAccount() error = %v, want unknown group", err)
	}
	if n := backend.count("AssociateProfile"); n != 0 {
		t.Errorf("AssociateProfile calls = %d, want 0", n)
	}
}

func TestDisassociateGroupFromAccount(t *testing.T) {
	backend := associationBackend(nil)
	sso := newTestSso(t, backend)

	ok, err := sso.DisassociateGroupFromAccount(context.Background(), "admins", "dev", "ReadOnly")
	if err != nil {
		t.Fatalf("DisassociateGroupFromAccount() error: %v", err)
	}
	if !ok {
		t.Fatal("DisassociateGroupFromAccount() = false, want true")
	}

	// The profile id comes from the account's existing profiles, without
	// re-provisioning.
	if n := backend.count("ProvisionApplicationProfileForAWSAccountInstance"); n != 0 {
		t.Errorf("provisioning calls = %d, want 0", n)
	}
	if n := backend.count("ListAWSAccountProfiles"); n == 0 {
		t.Error("ListAWSAccountProfiles was never called")
	}

	content := contentOf(t, backend.last("DisassociateProfile").Envelope)
	if content["profileId"] != "p-1" {
		t.Errorf("profileId = %v, want p-1", content["profileId"])
	}
	if content["accessorId"] != "g-1" || content["accessorType"] != "GROUP" {
		t.Errorf("accessor = %v/%v", content["accessorId"], content["accessorType"])
	}
}

func TestDisassociateUserFromAccount(t *testing.T) {
	backend := associationBackend(nil)
	sso := newTestSso(t, backend)

	ok, err := sso.DisassociateUserFromAccount(context.Background(), "jdoe", "dev", "ReadOnly")
	if err != nil {
		t.Fatalf("DisassociateUserFromAccount() error: %v", err)
	}
	if !ok {
		t.Fatal("DisassociateUserFromAccount() = false, want true")
	}

	content := contentOf(t, backend.last("DisassociateProfile").Envelope)
	if content["accessorId"] != "u-1" || content["accessorType"] != "USER" {
		t.Errorf("accessor = %v/%v", content["accessorId"], content["accessorType"])
	}
}

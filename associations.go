package awssso

import (
	"context"
	"fmt"

	"github.com/schubergphilis/awssso-go/internal/payload"
)

// The association workflows are straight-line sequences of independent
// calls: resolve the accessor and account, provision or look up the
// application profile, resolve the directory, then issue the final
// AssociateProfile or DisassociateProfile call. There is no compensation;
// a profile provisioned before a failing association call stays behind.

// AssociateGroupToAccount grants a group the given permission set on an
// account. Returns whether the final association call was accepted.
func (s *Sso) AssociateGroupToAccount(ctx context.Context, groupName, accountName, permissionSetName string) (bool, error) {
	group, err := s.GetGroupByName(ctx, groupName)
	if err != nil {
		return false, err
	}
	if group == nil {
		return false, fmt.Errorf("group %q not found", groupName)
	}

	content, err := s.profileContent(ctx, accountName, permissionSetName, true, map[string]any{
		"accessorId":      group.ID(),
		"accessorType":    "GROUP",
		"accessorDisplay": map[string]string{"groupName": groupName},
	})
	if err != nil {
		return false, err
	}

	return s.postProfileChange(ctx, "AssociateProfile", content)
}

// DisassociateGroupFromAccount revokes a group's permission set on an
// account. Returns whether the final disassociation call was accepted.
func (s *Sso) DisassociateGroupFromAccount(ctx context.Context, groupName, accountName, permissionSetName string) (bool, error) {
	group, err := s.GetGroupByName(ctx, groupName)
	if err != nil {
		return false, err
	}
	if group == nil {
		return false, fmt.Errorf("group %q not found", groupName)
	}

	content, err := s.profileContent(ctx, accountName, permissionSetName, false, map[string]any{
		"accessorId":      group.ID(),
		"accessorType":    "GROUP",
		"accessorDisplay": map[string]string{"groupName": groupName},
	})
	if err != nil {
		return false, err
	}

	return s.postProfileChange(ctx, "DisassociateProfile", content)
}

// AssociateUserToAccount grants a user the given permission set on an
// account. Returns whether the final association call was accepted.
func (s *Sso) AssociateUserToAccount(ctx context.Context, userName, accountName, permissionSetName string) (bool, error) {
	user, err := s.GetUserByName(ctx, userName)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, fmt.Errorf("user %q not found", userName)
	}

	content, err := s.profileContent(ctx, accountName, permissionSetName, true, map[string]any{
		"accessorId":      user.ID(),
		"accessorType":    "USER",
		"accessorDisplay": userDisplay(user),
	})
	if err != nil {
		return false, err
	}

	return s.postProfileChange(ctx, "AssociateProfile", content)
}

// DisassociateUserFromAccount revokes a user's permission set on an
// account. Returns whether the final disassociation call was accepted.
func (s *Sso) DisassociateUserFromAccount(ctx context.Context, userName, accountName, permissionSetName string) (bool, error) {
	user, err := s.GetUserByName(ctx, userName)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, fmt.Errorf("user %q not found", userName)
	}

	content, err := s.profileContent(ctx, accountName, permissionSetName, false, map[string]any{
		"accessorId":      user.ID(),
		"accessorType":    "USER",
		"accessorDisplay": userDisplay(user),
	})
	if err != nil {
		return false, err
	}

	return s.postProfileChange(ctx, "DisassociateProfile", content)
}

// userDisplay builds the accessorDisplay block for a user. The last_name
// key really is snake_case on the wire.
func userDisplay(user *User) map[string]string {
	return map[string]string{
		"userName":   user.Name(),
		"firstName":  user.FirstName(),
		"last_name":  user.LastName(),
		"windowsUpn": user.Name(),
	}
}

// profileContent resolves the shared request fields for the association
// calls: the account's instance id, the profile id (provisioned when
// provision is true, looked up among the account's profiles otherwise),
// and the directory id. The accessor fields are merged in.
func (s *Sso) profileContent(ctx context.Context, accountName, permissionSetName string, provision bool, accessor map[string]any) (map[string]any, error) {
	account, err := s.GetAccountByName(ctx, accountName)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("account %q not found", accountName)
	}

	instanceID, err := account.InstanceID(ctx)
	if err != nil {
		return nil, err
	}

	var profileID string
	if provision {
		profileID, err = s.provisionProfile(ctx, permissionSetName, accountName)
	} else {
		profileID, err = s.accountProfileID(ctx, account, permissionSetName)
	}
	if err != nil {
		return nil, err
	}

	directoryID, err := s.DirectoryID(ctx)
	if err != nil {
		return nil, err
	}

	content := map[string]any{
		"instanceId":    instanceID,
		"profileId":     profileID,
		"directoryType": "UserPool",
		"directoryId":   directoryID,
	}
	for k, v := range accessor {
		content[k] = v
	}
	return content, nil
}

// postProfileChange issues the final AssociateProfile or
// DisassociateProfile call and reports whether it was accepted. A non-OK
// response is logged, not an error.
func (s *Sso) postProfileChange(ctx context.Context, target string, content map[string]any) (bool, error) {
	env, err := payload.Build(content, target, payload.Options{
		Path:       "/control/",
		XAmzTarget: switchboardPrefix + target,
		Region:     s.region,
	})
	if err != nil {
		return false, err
	}

	resp, err := s.call(ctx, "control", s.endpoints.Peregrine(), env)
	if err != nil {
		return false, err
	}
	return resp.OK(), nil
}

// provisionProfile provisions (or re-provisions) the application profile
// binding the permission set to the account instance and returns its id.
// The control-plane reports errors in the JSON body, so a non-OK response
// simply yields an empty id.
func (s *Sso) provisionProfile(ctx context.Context, permissionSetName, accountName string) (string, error) {
	set, err := s.GetPermissionSetByName(ctx, permissionSetName)
	if err != nil {
		return "", err
	}
	if set == nil {
		return "", fmt.Errorf("permission set %q not found", permissionSetName)
	}

	account, err := s.GetAccountByName(ctx, accountName)
	if err != nil {
		return "", err
	}
	if account == nil {
		return "", fmt.Errorf("account %q not found", accountName)
	}

	instanceID, err := account.InstanceID(ctx)
	if err != nil {
		return "", err
	}

	const target = "ProvisionApplicationProfileForAWSAccountInstance"
	env, err := payload.Build(map[string]any{
		"permissionSetId": set.ID(),
		"instanceId":      instanceID,
	}, target, payload.Options{
		Path:       "/control/",
		XAmzTarget: switchboardPrefix + target,
		Region:     s.region,
	})
	if err != nil {
		return "", err
	}

	resp, err := s.call(ctx, "control", s.endpoints.Peregrine(), env)
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", nil
	}

	var out struct {
		ApplicationProfile struct {
			ProfileID string `json:"profileId"`
		} `json:"applicationProfile"`
	}
	if err := resp.JSON(&out); err != nil {
		return "", err
	}
	return out.ApplicationProfile.ProfileID, nil
}

// accountProfileID finds the id of the profile binding the permission set
// to the account, among the account's associated profiles. Absence yields
// an empty id, not an error.
func (s *Sso) accountProfileID(ctx context.Context, account *Account, permissionSetName string) (string, error) {
	profiles, err := account.AssociatedProfiles(ctx)
	if err != nil {
		return "", err
	}
	for _, profile := range profiles {
		if profile.Name == permissionSetName {
			return profile.ID, nil
		}
	}
	return "", nil
}

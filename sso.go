// Package awssso is a client for the undocumented AWS Single Sign-On
// console control-plane API. It authenticates a console session through an
// external authenticator, builds JSON request envelopes against a fixed
// allow-list of operation names, paginates list responses, and exposes the
// results as read-only entity views (Account, User, Group, PermissionSet)
// with lazily fetched related collections.
package awssso

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/schubergphilis/awssso-go/internal/config"
	"github.com/schubergphilis/awssso-go/internal/endpoints"
	"github.com/schubergphilis/awssso-go/internal/pagination"
	"github.com/schubergphilis/awssso-go/internal/payload"
	"github.com/schubergphilis/awssso-go/logging"
	"github.com/schubergphilis/awssso-go/transport"
)

// X-Amz-Target prefixes for the two console backend services. The account
// list goes through an Organizations proxy with its own target string.
const (
	switchboardPrefix = "com.amazon.switchboard.service.SWBService."
	userPoolPrefix    = "com.amazonaws.swbup.service.SWBUPService."

	searchUsersTarget  = "com.amazonaws.identitystore.AWSIdentityStoreService.SearchUsers"
	listAccountsTarget = "AWSOrganizationsV20161128.ListAccounts"
)

// Authenticator supplies the discovered console region and an
// authenticated session. Implementations live outside this package; see
// the auth package for one backed by AWS credentials.
type Authenticator interface {
	Region() string
	Session() transport.Session
}

// Sso models the AWS SSO console control-plane for one authenticated
// session. It is read-only after construction and safe for sequential
// reuse.
type Sso struct {
	region        string
	session       transport.Session
	logger        logging.Logger
	endpoints     *endpoints.Resolver
	relayState    string
	userPageSize  int
	groupPageSize int
}

type settings struct {
	logger    logging.Logger
	apiBase   string
	listBase  string
	configDir string
}

// Option customizes the client beyond the loaded configuration defaults.
type Option func(*settings)

// WithLogger injects the structured call logger. The default discards all
// entries.
func WithLogger(logger logging.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithEndpointBases overrides the regional API base and the fixed list
// base. Used to point the client at a test backend.
func WithEndpointBases(apiBase, listBase string) Option {
	return func(s *settings) {
		s.apiBase = apiBase
		s.listBase = listBase
	}
}

// WithConfigDir overrides the directory the client configuration is loaded
// from.
func WithConfigDir(dir string) Option {
	return func(s *settings) { s.configDir = dir }
}

// New creates an Sso client from an authenticated session. Defaults come
// from the optional config file; explicit options win.
func New(authn Authenticator, opts ...Option) (*Sso, error) {
	s := settings{configDir: config.DefaultConfigDir()}
	for _, opt := range opts {
		opt(&s)
	}

	cfg, err := config.Load(s.configDir)
	if err != nil {
		return nil, fmt.Errorf("load client config: %w", err)
	}

	region := authn.Region()
	if region == "" {
		region = cfg.Region
	}

	apiBase := s.apiBase
	if apiBase == "" {
		apiBase = cfg.APIBase
	}
	listBase := s.listBase
	if listBase == "" {
		listBase = cfg.ListBase
	}

	var resolver *endpoints.Resolver
	if apiBase != "" {
		resolver = endpoints.NewWithBases(apiBase, listBase)
	} else {
		resolver = endpoints.New(region)
	}

	logger := s.logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	return &Sso{
		region:        region,
		session:       authn.Session(),
		logger:        logger,
		endpoints:     resolver,
		relayState:    cfg.RelayState,
		userPageSize:  cfg.UserPageSize,
		groupPageSize: cfg.GroupPageSize,
	}, nil
}

// Region returns the console region the session is bound to.
func (s *Sso) Region() string {
	return s.region
}

// call issues one POST and records it in the structured log. A non-2xx
// status is logged but left to the caller to interpret; call sites differ
// on whether it is an error or an empty default.
func (s *Sso) call(ctx context.Context, service, url string, env *payload.Envelope) (*transport.Response, error) {
	start := time.Now()
	resp, err := s.session.Post(ctx, url, env)
	logErr := err
	if err == nil && !resp.OK() {
		logErr = &transport.StatusError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	s.logger.Log(service, env.Operation, time.Since(start), logErr)
	return resp, err
}

// DirectoryID returns the id of the external or internal directory
// configured with SSO.
func (s *Sso) DirectoryID(ctx context.Context) (string, error) {
	env, err := payload.Build(map[string]any{}, "GetUserPoolInfo", payload.Options{
		Path:       "/userpool/",
		XAmzTarget: userPoolPrefix + "GetUserPoolInfo",
		Region:     s.region,
	})
	if err != nil {
		return "", err
	}

	resp, err := s.call(ctx, "userpool", s.endpoints.UserPool(), env)
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", &transport.StatusError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	var out struct {
		DirectoryID string `json:"DirectoryId"`
	}
	if err := resp.JSON(&out); err != nil {
		return "", err
	}
	return out.DirectoryID, nil
}

// Accounts returns the AWS accounts known to SSO, across all pages.
func (s *Sso) Accounts(ctx context.Context) ([]*Account, error) {
	items, err := s.accountsIterator().All(ctx)
	if err != nil {
		return nil, err
	}

	accounts := make([]*Account, 0, len(items))
	for _, raw := range items {
		account, err := newAccount(s, raw)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// accountsIterator pages through the Organizations account list. The
// listAccounts operation is proxied to Organizations rather than the
// switchboard service, so its envelope is built by hand with the fixed
// region and user agent the console frontend sends.
func (s *Sso) accountsIterator() *pagination.Iterator {
	return pagination.NewIterator(s.session, s.logger, pagination.Config{
		URL: s.endpoints.Organizations(),
		Build: func(cursor string) (any, error) {
			content := map[string]any{}
			if cursor != "" {
				content["NextToken"] = cursor
			}
			data, err := json.Marshal(content)
			if err != nil {
				return nil, fmt.Errorf("serialize content for listAccounts: %w", err)
			}
			return &payload.Envelope{
				ContentString: string(data),
				Headers: payload.Headers{
					ContentType:     "application/x-amz-json-1.1",
					ContentEncoding: payload.ContentEncoding,
					XAmzTarget:      listAccountsTarget,
					XAmzUserAgent:   "aws-sdk-js/2.152.0 promise",
				},
				Method:    "POST",
				Operation: "listAccounts",
				Params:    map[string]string{},
				Path:      "/",
				Region:    "us-east-1",
			}, nil
		},
		ItemsField:  "Accounts",
		CursorField: "NextToken",
		Service:     "organizations",
		Operation:   "listAccounts",
	})
}

// Users returns the users configured in SSO, across all pages.
func (s *Sso) Users(ctx context.Context) ([]*User, error) {
	directoryID, err := s.DirectoryID(ctx)
	if err != nil {
		return nil, err
	}

	it := pagination.NewIterator(s.session, s.logger, pagination.Config{
		URL: s.endpoints.IdentityStore(),
		Build: func(cursor string) (any, error) {
			content := map[string]any{
				"IdentityStoreId": directoryID,
				"MaxResults":      s.userPageSize,
			}
			if cursor != "" {
				content["NextToken"] = cursor
			}
			return payload.Build(content, "SearchUsers", payload.Options{
				Path:       "/identitystore/",
				XAmzTarget: searchUsersTarget,
				Region:     s.region,
			})
		},
		ItemsField:  "Users",
		CursorField: "NextToken",
		Service:     "identitystore",
		Operation:   "SearchUsers",
	})

	items, err := it.All(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]*User, 0, len(items))
	for _, raw := range items {
		user, err := newUser(s, raw)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// Groups returns the groups configured in SSO, across all pages.
func (s *Sso) Groups(ctx context.Context) ([]*Group, error) {
	it := pagination.NewIterator(s.session, s.logger, pagination.Config{
		URL: s.endpoints.ListUserPool(),
		Build: func(cursor string) (any, error) {
			content := map[string]any{
				"SearchString":     "*",
				"SearchAttributes": []string{"GroupName"},
				"MaxResults":       s.groupPageSize,
			}
			if cursor != "" {
				content["NextToken"] = cursor
			}
			return payload.Build(content, "SearchGroups", payload.Options{
				Path:       "/userpool/",
				XAmzTarget: userPoolPrefix + "SearchGroups",
				Region:     s.region,
			})
		},
		ItemsField:  "Groups",
		CursorField: "NextToken",
		Service:     "userpool",
		Operation:   "SearchGroups",
	})

	items, err := it.All(ctx)
	if err != nil {
		return nil, err
	}

	groups := make([]*Group, 0, len(items))
	for _, raw := range items {
		group, err := newGroup(s, raw)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// PermissionSets returns the permission sets configured in SSO. The
// control-plane returns them in one response, without pagination.
func (s *Sso) PermissionSets(ctx context.Context) ([]*PermissionSet, error) {
	env, err := payload.Build(map[string]any{}, "ListPermissionSets", payload.Options{
		Path:       "/control/",
		XAmzTarget: switchboardPrefix + "ListPermissionSets",
		Region:     s.region,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.call(ctx, "control", s.endpoints.Peregrine(), env)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &transport.StatusError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	var out struct {
		PermissionSets []json.RawMessage `json:"permissionSets"`
	}
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}

	sets := make([]*PermissionSet, 0, len(out.PermissionSets))
	for _, raw := range out.PermissionSets {
		set, err := newPermissionSet(s, raw)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// GetAccountByName scans the account list for the first account with the
// given name. A miss returns nil without an error.
func (s *Sso) GetAccountByName(ctx context.Context, name string) (*Account, error) {
	accounts, err := s.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		if account.Name() == name {
			return account, nil
		}
	}
	return nil, nil
}

// GetAccountByID scans the account list for the first account with the
// given id. A miss returns nil without an error.
func (s *Sso) GetAccountByID(ctx context.Context, id string) (*Account, error) {
	accounts, err := s.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		if account.ID() == id {
			return account, nil
		}
	}
	return nil, nil
}

// GetUserByName scans the user list for the first user with the given
// user name. A miss returns nil without an error.
func (s *Sso) GetUserByName(ctx context.Context, name string) (*User, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.Name() == name {
			return user, nil
		}
	}
	return nil, nil
}

// GetUserByID scans the user list for the first user with the given id. A
// miss returns nil without an error.
func (s *Sso) GetUserByID(ctx context.Context, id string) (*User, error) {
	users, err := s.Users(ctx)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.ID() == id {
			return user, nil
		}
	}
	return nil, nil
}

// GetGroupByName scans the group list for the first group with the given
// name. A miss returns nil without an error.
func (s *Sso) GetGroupByName(ctx context.Context, name string) (*Group, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return nil, err
	}
	for _, group := range groups {
		if group.Name() == name {
			return group, nil
		}
	}
	return nil, nil
}

// GetGroupByID scans the group list for the first group with the given id.
// A miss returns nil without an error.
func (s *Sso) GetGroupByID(ctx context.Context, id string) (*Group, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return nil, err
	}
	for _, group := range groups {
		if group.ID() == id {
			return group, nil
		}
	}
	return nil, nil
}

// GetPermissionSetByName scans the permission sets for the first one with
// the given name. A miss returns nil without an error.
func (s *Sso) GetPermissionSetByName(ctx context.Context, name string) (*PermissionSet, error) {
	sets, err := s.PermissionSets(ctx)
	if err != nil {
		return nil, err
	}
	for _, set := range sets {
		if set.Name() == name {
			return set, nil
		}
	}
	return nil, nil
}

// CreatePermissionSetOptions carries the optional fields for
// CreatePermissionSet. Zero values take the console defaults: a blank
// description, the configured relay state, and a two hour session.
type CreatePermissionSetOptions struct {
	Description string
	RelayState  string
	TTL         string
}

// CreatePermissionSet creates a permission set and returns its view.
func (s *Sso) CreatePermissionSet(ctx context.Context, name string, opts CreatePermissionSetOptions) (*PermissionSet, error) {
	if opts.Description == "" {
		opts.Description = " "
	}
	if opts.RelayState == "" {
		opts.RelayState = s.relayState
	}
	if opts.TTL == "" {
		opts.TTL = "PT2H"
	}

	env, err := payload.Build(map[string]any{
		"permissionSetName": name,
		"description":       opts.Description,
		"relayState":        opts.RelayState,
		"ttl":               opts.TTL,
	}, "CreatePermissionSet", payload.Options{
		Path:       "/control/",
		XAmzTarget: switchboardPrefix + "CreatePermissionSet",
		Region:     s.region,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.call(ctx, "control", s.endpoints.Peregrine(), env)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &transport.StatusError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	var out struct {
		PermissionSet json.RawMessage `json:"permissionSet"`
	}
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return newPermissionSet(s, out.PermissionSet)
}

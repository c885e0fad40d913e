// Package auth obtains an authenticated AWS console session for the SSO
// control-plane client. It resolves credentials with the AWS SDK, assumes
// the given role, exchanges the temporary credentials for a console signin
// token at the federation endpoint, and performs the login redirect so the
// session cookies end up in the HTTP client's jar.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	smithy "github.com/aws/smithy-go"

	awssso "github.com/schubergphilis/awssso-go"
	"github.com/schubergphilis/awssso-go/internal/config"
	"github.com/schubergphilis/awssso-go/transport"
)

// DefaultFederationEndpoint is the AWS console federation endpoint.
const DefaultFederationEndpoint = "https://signin.aws.amazon.com/federation"

// AssumeRoleAPI defines the subset of the STS API used for credential
// exchange. This interface enables mock injection for testing.
type AssumeRoleAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// GetCallerIdentityAPI defines the subset of the STS API used for identity
// resolution.
type GetCallerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// STSAPI combines the STS operations the authenticator needs.
type STSAPI interface {
	AssumeRoleAPI
	GetCallerIdentityAPI
}

var _ STSAPI = (*sts.Client)(nil)

// Console is an authenticated console session bound to one region. It
// satisfies the client's Authenticator contract.
type Console struct {
	region   string
	session  transport.Session
	identity *Identity
}

var _ awssso.Authenticator = (*Console)(nil)

// Region returns the console region the session was established for.
func (c *Console) Region() string { return c.region }

// Session returns the authenticated HTTP session.
func (c *Console) Session() transport.Session { return c.session }

// Identity returns the resolved caller identity, for diagnostics.
func (c *Console) Identity() *Identity { return c.identity }

type settings struct {
	region             string
	httpClient         *http.Client
	stsClient          STSAPI
	federationEndpoint string
	destination        string
	configDir          string
}

// Option customizes the authenticator.
type Option func(*settings)

// WithRegion pins the console region instead of taking it from the AWS
// SDK config chain.
func WithRegion(region string) Option {
	return func(s *settings) { s.region = region }
}

// WithHTTPClient injects the HTTP client carrying the session cookies. A
// cookie jar is added when the client has none.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) { s.httpClient = client }
}

// WithSTSClient injects the STS client. The default is built from the
// loaded AWS SDK config.
func WithSTSClient(client STSAPI) Option {
	return func(s *settings) { s.stsClient = client }
}

// WithFederationEndpoint overrides the console federation endpoint. Used
// to point the signin flow at a test backend.
func WithFederationEndpoint(endpoint string) Option {
	return func(s *settings) { s.federationEndpoint = endpoint }
}

// WithDestination overrides the console destination URL of the login
// redirect.
func WithDestination(destination string) Option {
	return func(s *settings) { s.destination = destination }
}

// WithConfigDir overrides the directory client defaults are loaded from.
func WithConfigDir(dir string) Option {
	return func(s *settings) { s.configDir = dir }
}

// New assumes roleARN, signs in to the console with the resulting
// temporary credentials, and returns the authenticated session.
func New(ctx context.Context, roleARN string, opts ...Option) (*Console, error) {
	s := settings{
		federationEndpoint: DefaultFederationEndpoint,
		configDir:          config.DefaultConfigDir(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	clientCfg, err := config.Load(s.configDir)
	if err != nil {
		return nil, fmt.Errorf("load client config: %w", err)
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if s.region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(s.region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	region := s.region
	if region == "" {
		region = awsCfg.Region
	}
	if region == "" {
		region = clientCfg.Region
	}

	stsClient := s.stsClient
	if stsClient == nil {
		stsClient = sts.NewFromConfig(awsCfg)
	}

	identity, err := resolveIdentity(ctx, stsClient)
	if err != nil {
		return nil, err
	}

	provider := stscreds.NewAssumeRoleProvider(stsClient, roleARN, func(o *stscreds.AssumeRoleOptions) {
		o.RoleSessionName = "awssso-" + identity.Name
	})
	creds, err := provider.Retrieve(ctx)
	if err != nil {
		return nil, apiError("sts assume-role", err)
	}
	if creds.SessionToken == "" {
		return nil, errors.New("assumed credentials carry no session token")
	}

	httpClient := s.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: time.Duration(clientCfg.HTTPTimeoutSeconds) * time.Second,
		}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	destination := s.destination
	if destination == "" {
		destination = fmt.Sprintf("https://%s.console.aws.amazon.com/console/home?region=%s", region, region)
	}

	token, err := getSigninToken(ctx, httpClient, s.federationEndpoint, creds)
	if err != nil {
		return nil, err
	}
	if err := login(ctx, httpClient, s.federationEndpoint, token, destination); err != nil {
		return nil, err
	}

	return &Console{
		region:   region,
		session:  transport.NewHTTPSession(httpClient),
		identity: identity,
	}, nil
}

// apiError rewraps an AWS API failure with its service error code when one
// is present.
func apiError(op string, err error) error {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return fmt.Errorf("%s: %s: %s", op, ae.ErrorCode(), ae.ErrorMessage())
	}
	return fmt.Errorf("%s: %w", op, err)
}

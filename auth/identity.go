package auth

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Identity is the resolved caller identity. Name is the normalized
// trailing identifier of the caller ARN.
type Identity struct {
	AccountID string
	Name      string
	ARN       string
}

// resolveIdentity calls STS GetCallerIdentity and normalizes the ARN.
func resolveIdentity(ctx context.Context, client GetCallerIdentityAPI) (*Identity, error) {
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, apiError("sts get-caller-identity", err)
	}
	if out.Arn == nil {
		return nil, fmt.Errorf("sts get-caller-identity returned nil ARN")
	}

	name, err := normalizeARN(*out.Arn)
	if err != nil {
		return nil, fmt.Errorf("normalize ARN: %w", err)
	}

	identity := &Identity{Name: name, ARN: *out.Arn}
	if out.Account != nil {
		identity.AccountID = *out.Account
	}
	return identity, nil
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeARN extracts the trailing identifier from an AWS ARN and
// normalizes it to a friendly name: last path segment, @domain stripped,
// lowercased, runs of non-alphanumerics collapsed to a single hyphen.
func normalizeARN(arn string) (string, error) {
	if arn == "" {
		return "", fmt.Errorf("empty ARN")
	}

	parts := strings.SplitN(arn, ":", 6)
	if len(parts) < 6 {
		return "", fmt.Errorf("malformed ARN: expected at least 6 colon-separated fields, got %d", len(parts))
	}

	resource := parts[5]
	if resource == "" {
		return "", fmt.Errorf("malformed ARN: empty resource field")
	}

	segments := strings.Split(resource, "/")
	identifier := segments[len(segments)-1]
	if identifier == "" {
		return "", fmt.Errorf("malformed ARN: empty trailing identifier")
	}

	if idx := strings.Index(identifier, "@"); idx > 0 {
		identifier = identifier[:idx]
	}
	identifier = strings.ToLower(identifier)
	identifier = nonAlphanumeric.ReplaceAllString(identifier, "-")
	identifier = strings.Trim(identifier, "-")
	if identifier == "" {
		return "", fmt.Errorf("ARN normalized to empty string: %s", arn)
	}
	return identifier, nil
}

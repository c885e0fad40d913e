package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// federationSession is the credential triple the federation endpoint
// expects, serialized into the Session query parameter.
type federationSession struct {
	SessionID    string `json:"sessionId"`
	SessionKey   string `json:"sessionKey"`
	SessionToken string `json:"sessionToken"`
}

// getSigninToken exchanges temporary credentials for a console signin
// token.
func getSigninToken(ctx context.Context, client *http.Client, endpoint string, creds aws.Credentials) (string, error) {
	session, err := json.Marshal(federationSession{
		SessionID:    creds.AccessKeyID,
		SessionKey:   creds.SecretAccessKey,
		SessionToken: creds.SessionToken,
	})
	if err != nil {
		return "", fmt.Errorf("serialize federation session: %w", err)
	}

	query := url.Values{}
	query.Set("Action", "getSigninToken")
	query.Set("Session", string(session))

	body, err := federationGet(ctx, client, endpoint, query)
	if err != nil {
		return "", fmt.Errorf("get signin token: %w", err)
	}

	var out struct {
		SigninToken string `json:"SigninToken"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode signin token response: %w", err)
	}
	if out.SigninToken == "" {
		return "", fmt.Errorf("federation endpoint returned no signin token")
	}
	return out.SigninToken, nil
}

// login performs the console login redirect. Its purpose is the session
// cookies the endpoint sets; the response body is discarded.
func login(ctx context.Context, client *http.Client, endpoint, token, destination string) error {
	query := url.Values{}
	query.Set("Action", "login")
	query.Set("Issuer", "awssso")
	query.Set("Destination", destination)
	query.Set("SigninToken", token)

	if _, err := federationGet(ctx, client, endpoint, query); err != nil {
		return fmt.Errorf("console login: %w", err)
	}
	return nil
}

func federationGet(ctx context.Context, client *http.Client, endpoint string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

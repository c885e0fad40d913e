package awssso

import (
	"github.com/schubergphilis/awssso-go/internal/payload"
)

// payloadForControl builds the envelope for a switchboard operation. Entity
// calls do not stamp the session region; the envelope keeps the console
// default, matching what the frontend sends.
func payloadForControl(content any, target string) (*payload.Envelope, error) {
	return payload.Build(content, target, payload.Options{
		Path:       "/control/",
		XAmzTarget: switchboardPrefix + target,
	})
}

// payloadForUserPool builds the envelope for a userpool (swbup) operation.
func payloadForUserPool(content any, target string) (*payload.Envelope, error) {
	return payload.Build(content, target, payload.Options{
		Path:       "/userpool/",
		XAmzTarget: userPoolPrefix + target,
	})
}

package auth

import (
	"encoding/json"
	"fmt"
)

// EndpointDescriptor describes one prediction target. Descriptors are
// looked up by target id and cached until process restart; the JSON tags
// match the secret store's ml-endpoint-<target-id> payload shape.
type EndpointDescriptor struct {
	URL                string `json:"url" yaml:"url"`
	CredentialMaterial string `json:"credential_material,omitempty" yaml:"credentialMaterial,omitempty"`
	TargetName         string `json:"target_name,omitempty" yaml:"targetName,omitempty"`
	Version            string `json:"version,omitempty" yaml:"version,omitempty"`
	Deployment         string `json:"deployment,omitempty" yaml:"deployment,omitempty"`
}

// decodeEndpoint parses a secret store descriptor payload.
func decodeEndpoint(value string) (*EndpointDescriptor, error) {
	var desc EndpointDescriptor
	if err := json.Unmarshal([]byte(value), &desc); err != nil {
		return nil, fmt.Errorf("failed to decode endpoint descriptor: %w", err)
	}
	if desc.URL == "" {
		return nil, fmt.Errorf("endpoint descriptor missing url")
	}
	return &desc, nil
}

package webresource

import (
	"fmt"
	"strings"
)

// Policies for local files whose extension has no web resource type.
const (
	PolicySkip = "skip"
	PolicyFail = "fail"
)

// Config holds sync behaviour settings.
type Config struct {
	// UnknownExtension is the policy for unmapped extensions: skip or fail.
	UnknownExtension string `mapstructure:"unknown_extension" default:"skip"`
	// Exclude lists glob patterns of local paths to leave out of the sync.
	Exclude []string `mapstructure:"exclude" default:""`
}

// Policy returns the normalized unknown extension policy.
func (c Config) Policy() string {
	p := strings.ToLower(strings.TrimSpace(c.UnknownExtension))
	if p == "" {
		return PolicySkip
	}
	return p
}

// Validate checks the configured values.
func (c Config) Validate() error {
	switch c.Policy() {
	case PolicySkip, PolicyFail:
		return nil
	default:
		return fmt.Errorf("invalid unknown_extension policy %q, expected %s or %s", c.UnknownExtension, PolicySkip, PolicyFail)
	}
}

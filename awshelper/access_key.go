package awshelper

import (
	"strings"

	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/localstack/tflocal/options"
)

const (
	// liveKeyPrefix is the first character of real AWS access key IDs (AKIA..., ASIA...).
	liveKeyPrefix = "A"

	// deactivatedKeyPrefix replaces the live prefix so a real key can never authenticate
	// against anything while staying recognizable in generated configuration.
	deactivatedKeyPrefix = "L"
)

// ResolveAccessKey determines the access key to embed in generated provider and backend
// blocks. When access-key customization is disabled this is always the mock default.
//
// When enabled, the first match wins: the AWS_ACCESS_KEY_ID environment variable, the
// access_key attribute of the block being overridden, the shared-credentials entry for the
// active profile, and finally the mock default. Any live key that wins is deactivated by
// ReplaceLiveKeyPrefix before use.
func ResolveAccessKey(opts *options.TflocalOptions, blockAccessKey string) string {
	if !opts.CustomizeAccessKey {
		return options.DefaultAccessKey
	}

	if envKey := opts.Env["AWS_ACCESS_KEY_ID"]; envKey != "" {
		return ReplaceLiveKeyPrefix(envKey)
	}

	if blockAccessKey != "" {
		return ReplaceLiveKeyPrefix(blockAccessKey)
	}

	if profileKey := sharedCredentialsAccessKey(opts.Env["AWS_PROFILE"]); profileKey != "" {
		return ReplaceLiveKeyPrefix(profileKey)
	}

	return options.DefaultAccessKey
}

// ReplaceLiveKeyPrefix swaps the leading live-key character for the deactivated marker,
// preserving the rest of the key. Non-live keys pass through unchanged.
func ReplaceLiveKeyPrefix(accessKey string) string {
	if strings.HasPrefix(accessKey, liveKeyPrefix) {
		return deactivatedKeyPrefix + accessKey[len(liveKeyPrefix):]
	}

	return accessKey
}

// sharedCredentialsAccessKey reads the access key for the given profile (or the default
// profile) from the SDK's shared credentials chain. Lookup failures simply mean there is no
// profile credential to use.
func sharedCredentialsAccessKey(profile string) string {
	creds, err := credentials.NewSharedCredentials("", profile).Get()
	if err != nil {
		return ""
	}

	return creds.AccessKeyID
}

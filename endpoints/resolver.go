// Package endpoints resolves LocalStack endpoint URLs for AWS service names.
package endpoints

import (
	"fmt"
	"strings"

	"github.com/localstack/tflocal/options"
)

// Resolver computes service endpoint URLs. It is a pure function of the options snapshot, so
// resolving the same service any number of times per run yields the same URL.
type Resolver struct {
	opts *options.TflocalOptions
}

func NewResolver(opts *options.TflocalOptions) *Resolver {
	return &Resolver{opts: opts}
}

// Resolve returns the endpoint URL for the given service name.
//
// A per-service environment override named <SERVICE>_ENDPOINT (uppercased, hyphens replaced
// with underscores) wins and is used verbatim, with "http://" prepended when no scheme is
// present. Otherwise the URL is composed from the service's hostname and the edge port.
func (resolver *Resolver) Resolve(service string) string {
	if override, ok := resolver.endpointFromEnv(service); ok {
		return override
	}

	return fmt.Sprintf("http://%s:%d", resolver.hostname(service), resolver.opts.EdgePort)
}

// UseS3PathStyle reports whether the provider must use path-style S3 addressing: true whenever
// the resolved S3 hostname does not carry the virtual-host-style "s3." prefix. This is
// recomputed on every call since it depends on the resolver's environment overrides.
func (resolver *Resolver) UseS3PathStyle() bool {
	host := resolver.Resolve("s3")
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimPrefix(host, "https://")

	return !strings.HasPrefix(host, "s3.")
}

func (resolver *Resolver) endpointFromEnv(service string) (string, bool) {
	envVar := strings.ToUpper(strings.ReplaceAll(service, "-", "_")) + "_ENDPOINT"

	override, ok := resolver.opts.Env[envVar]
	if override = strings.TrimSpace(override); !ok || override == "" {
		return "", false
	}

	if !strings.Contains(override, "://") {
		override = "http://" + override
	}

	return override, true
}

func (resolver *Resolver) hostname(service string) string {
	switch service {
	case "s3":
		return resolver.opts.S3Hostname
	case "mwaa":
		// MWAA environments are served from their own subdomain of the localhost domain.
		return "mwaa." + options.LocalhostDomain
	default:
		return resolver.opts.LocalstackHostname
	}
}

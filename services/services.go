// Package services is the service directory for the LocalStack edge: the catalog of AWS service
// names LocalStack exposes, plus the rules that map catalog names onto the endpoint names the
// terraform AWS provider accepts (aliases, replacements, exclusions, and provider-version ranges).
package services

import (
	"sort"
	"strings"

	"github.com/hashicorp/go-version"
)

// catalog is the ordered set of canonical service names served by the LocalStack edge port.
// Append-only; loaded once per run via Names().
var catalog = []string{
	"acm", "amplify", "apigateway", "apigatewayv2", "appconfig", "appconfigdata",
	"application-autoscaling", "appsync", "athena", "autoscaling", "backup", "batch",
	"ce", "cloudcontrol", "cloudformation", "cloudfront", "cloudtrail", "cloudwatch",
	"codebuild", "codecommit", "codedeploy", "codepipeline", "cognito-identity",
	"cognito-idp", "config", "configservice", "docdb", "dynamodb", "dynamodbstreams",
	"ec2", "ecr", "ecs", "edge", "efs", "eks", "elasticache", "elasticbeanstalk",
	"elasticsearch", "elastictranscoder", "elb", "elbv2", "emr", "es", "events",
	"firehose", "fis", "glacier", "glue", "iam", "iot", "iot-data", "iotanalytics",
	"iotevents", "iotwireless", "kafka", "kinesis", "kinesisanalytics", "kms",
	"lakeformation", "lambda", "logs", "mediaconvert", "mediastore",
	"meteringmarketplace", "mq", "mwaa", "neptune", "opensearch", "organizations",
	"pinpoint", "pipes", "qldb", "ram", "rds", "redshift", "resource-groups",
	"resourcegroupstaggingapi", "route53", "route53resolver", "s3", "s3control",
	"sagemaker", "scheduler", "secretsmanager", "serverlessrepo", "servicediscovery",
	"ses", "sesv2", "simpledb", "sns", "sqs", "ssm", "sso-admin", "stepfunctions",
	"sts", "support", "swf", "timestream", "transcribe", "transfer", "waf", "wafv2",
	"xray",
}

// aliasGroups are sets of mutually exclusive service name synonyms. The first element of each
// group is the canonical name; every name appears in at most one group.
var aliasGroups = [][]string{
	{"config", "configservice"},
	{"es", "elasticsearch"},
}

// replacements substitutes a service name with the name the AWS provider expects for its
// endpoint, or drops it entirely (empty substitute). Applied after alias canonicalization.
var replacements = map[string]string{
	"appconfigdata":   "appconfig",
	"ce":              "costexplorer",
	"dynamodbstreams": "",
	"iot-data":        "",
	"iotwireless":     "",
	"timestream":      "timestreamwrite",
}

// exclusions are catalog entries that never get a provider endpoint override.
var exclusions = map[string]struct{}{
	"edge":                {},
	"meteringmarketplace": {},
}

// versionRange is the half-open (min, max) AWS provider version range for which a service
// endpoint is accepted by the provider schema.
type versionRange struct {
	min string
	max string
}

// versionExclusions maps a service to the provider versions that support its endpoint. A
// service absent from this map is always supported. These entries were dropped from the
// provider schema in v6.
var versionExclusions = map[string]versionRange{
	"simpledb":     {min: "0.0.0", max: "6.0.0"},
	"opsworks":     {min: "0.0.0", max: "6.0.0"},
	"iotanalytics": {min: "0.0.0", max: "6.0.0"},
	"iotevents":    {min: "0.0.0", max: "6.0.0"},
}

// Names returns the catalog of canonical service names, in directory order.
func Names() []string {
	names := make([]string, len(catalog))
	copy(names, catalog)

	return names
}

// CanonicalName resolves a service name through its alias group: every member of a group maps
// to the group's first element. Names outside any group map to themselves.
func CanonicalName(name string) string {
	for _, group := range aliasGroups {
		for _, alias := range group {
			if alias == name {
				return group[0]
			}
		}
	}

	return name
}

// SupportedByProvider reports whether the given service endpoint is accepted by the AWS
// provider plugin at the given version. A nil version (no lock file found) counts as
// supported, as does any service without a version exclusion entry.
func SupportedByProvider(name string, providerVersion *version.Version) bool {
	vr, ok := versionExclusions[name]
	if !ok || providerVersion == nil {
		return true
	}

	minVersion := version.Must(version.NewVersion(vr.min))
	maxVersion := version.Must(version.NewVersion(vr.max))

	return providerVersion.GreaterThan(minVersion) && providerVersion.LessThan(maxVersion)
}

// EndpointNames returns the final, sorted list of endpoint names to emit into a provider
// block: the catalog minus exclusions and version-excluded services, hyphens stripped,
// aliases canonicalized and replacements applied, with each name appearing exactly once.
func EndpointNames(providerVersion *version.Version) []string {
	seen := make(map[string]struct{})
	names := []string{}

	for _, name := range catalog {
		if _, excluded := exclusions[name]; excluded {
			continue
		}

		if !SupportedByProvider(name, providerVersion) {
			continue
		}

		name = CanonicalName(name)
		if substitute, ok := replacements[name]; ok {
			name = substitute
		}

		if name == "" {
			continue
		}

		name = strings.ReplaceAll(name, "-", "")

		if _, duplicate := seen[name]; duplicate {
			continue
		}

		seen[name] = struct{}{}
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

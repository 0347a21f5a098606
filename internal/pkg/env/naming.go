package env

import "strings"

const envPrefix = "TICKETRUSH_"

// NamingConvention converts a flag name to an environment variable name.
// For example "route-class" -> "TICKETRUSH_ROUTE_CLASS".
type NamingConvention struct{}

func NewNamingConvention() *NamingConvention {
	return &NamingConvention{}
}

func (*NamingConvention) Replace(flagName string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

package options

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketrush/ticketrush/internal/pkg/env"
)

func TestOptions_ValuesPriority(t *testing.T) {
	t.Parallel()
	flags := &pflag.FlagSet{}
	options := NewOptions()
	options.BindPersistentFlags(flags)
	options.BindRunFlags(flags)

	// No values defined
	envs := env.Empty()
	require.NoError(t, options.Load(envs, flags))
	assert.Equal(t, "", options.RouteClass)

	// 1. Lower priority, ENV variable
	envs.Set("TICKETRUSH_ROUTE_CLASS", "datacenter")
	require.NoError(t, options.Load(envs, flags))
	assert.Equal(t, "datacenter", options.RouteClass)

	// 2. The highest priority, flag
	require.NoError(t, flags.Set("route-class", "residential"))
	require.NoError(t, options.Load(envs, flags))
	assert.Equal(t, "residential", options.RouteClass)
}

func TestOptions_Normalize(t *testing.T) {
	t.Parallel()
	flags := &pflag.FlagSet{}
	options := NewOptions()
	options.BindRunFlags(flags)

	envs := env.FromMap(map[string]string{
		"TICKETRUSH_EGRESS_URL": "https://egress.example.com/",
		"TICKETRUSH_EGRESS_KEY": "  secret-key  ",
	})
	require.NoError(t, options.Load(envs, flags))
	assert.Equal(t, "https://egress.example.com", options.EgressURL)
	assert.Equal(t, "secret-key", options.EgressKey)
}

func TestOptions_ValidateNoRequired(t *testing.T) {
	t.Parallel()
	options := NewOptions()
	assert.Empty(t, options.Validate(nil))
}

func TestOptions_ValidateAllRequired(t *testing.T) {
	t.Parallel()
	options := NewOptions()
	errs := options.Validate([]string{"TasksFile", "RouteClass", "EgressURL", "BackendURL", "ProbeURL"})

	expected := []string{
		`- Missing tasks file. Please use "--tasks" flag or ENV variable "TICKETRUSH_TASKS".`,
		`- Missing route class. Please use "--route-class" flag or ENV variable "TICKETRUSH_ROUTE_CLASS".`,
		`- Missing egress url. Please use "--egress-url" flag or ENV variable "TICKETRUSH_EGRESS_URL".`,
		`- Missing backend url. Please use "--backend-url" flag or ENV variable "TICKETRUSH_BACKEND_URL".`,
		`- Missing probe url. Please use "--probe-url" flag or ENV variable "TICKETRUSH_PROBE_URL".`,
	}
	assert.Equal(t, strings.Join(expected, "\n"), errs)
}

func TestOptions_StartAtTime(t *testing.T) {
	t.Parallel()
	options := NewOptions()

	at, err := options.StartAtTime()
	require.NoError(t, err)
	assert.True(t, at.IsZero())

	options.StartAt = "2026-08-23T10:00:00+09:00"
	at, err = options.StartAtTime()
	require.NoError(t, err)
	assert.Equal(t, 10, at.Hour())

	options.StartAt = "today at ten"
	_, err = options.StartAtTime()
	require.Error(t, err)
}

func TestOptions_Dump(t *testing.T) {
	t.Parallel()
	options := NewOptions()
	options.EgressURL = "https://egress.example.com"
	options.EgressKey = "12345-67890123abcd"
	assert.Contains(t, options.Dump(), `"EgressKey":"12345-6*****"`)
	assert.NotContains(t, options.Dump(), "67890123abcd")
}

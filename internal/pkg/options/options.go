// Package options merges values from command line flags, environment
// variables and ".env" files. Priority: flag > OS env > ".env" file.
package options

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ticketrush/ticketrush/internal/pkg/encoding/json"
	"github.com/ticketrush/ticketrush/internal/pkg/env"
	"github.com/ticketrush/ticketrush/internal/pkg/utils/errors"
)

// Options contains parsed flags and ENV variables.
type Options struct {
	Verbose     bool   `json:"Verbose" flag:"verbose"`
	LogFilePath string `json:"LogFilePath" flag:"log-file"`
	TasksFile   string `json:"TasksFile" flag:"tasks"`
	RouteClass  string `json:"RouteClass" flag:"route-class"`
	StartAt     string `json:"StartAt" flag:"start-at"`
	EgressURL   string `json:"EgressURL" flag:"egress-url"`
	EgressKey   string `json:"EgressKey" flag:"egress-key"`
	BackendURL  string `json:"BackendURL" flag:"backend-url"`
	ProbeURL    string `json:"ProbeURL" flag:"probe-url"`
	NotifyURL   string `json:"NotifyURL" flag:"notify-url"`
}

func NewOptions() *Options {
	return &Options{}
}

// BindPersistentFlags for all commands.
func (o *Options) BindPersistentFlags(flags *pflag.FlagSet) {
	flags.SortFlags = true
	flags.BoolP("help", "h", false, "print help for command")
	flags.StringP("log-file", "l", "", "path to a log file for details")
	flags.BoolP("verbose", "v", false, "print details")
}

// BindRunFlags for the run command.
func (o *Options) BindRunFlags(flags *pflag.FlagSet) {
	flags.SortFlags = true
	flags.StringP("tasks", "t", "", "path to the tasks file")
	flags.StringP("route-class", "c", "", "egress route class, eg. \"residential\"")
	flags.String("start-at", "", "scheduled start instant, RFC 3339")
	flags.String("egress-url", "", "egress vendor API URL")
	flags.String("egress-key", "", "egress vendor API key")
	flags.String("backend-url", "", "reservation backend URL")
	flags.String("probe-url", "", "route validation probe URL")
	flags.String("notify-url", "", "outcome webhook URL, optional")
}

// Load all sources of the options, flag values win over ENVs.
func (o *Options) Load(envs *env.Map, flags *pflag.FlagSet) error {
	naming := env.NewNamingConvention()
	parser := viper.New()
	if err := parser.BindPFlags(flags); err != nil {
		return err
	}

	reflection := reflect.Indirect(reflect.ValueOf(o))
	types := reflect.TypeOf(*o)
	for i := 0; i < reflection.NumField(); i++ {
		flag := types.Field(i).Tag.Get("flag")
		if flag == "" {
			continue
		}

		// An ENV value applies when the flag is not set explicitly
		if value, found := envs.Lookup(naming.Replace(flag)); found {
			if f := flags.Lookup(flag); f == nil || !f.Changed {
				parser.Set(flag, value)
			}
		}

		switch reflection.Field(i).Kind() {
		case reflect.String:
			reflection.Field(i).SetString(parser.GetString(flag))
		case reflect.Bool:
			reflection.Field(i).SetBool(parser.GetBool(flag))
		}
	}

	o.normalize()
	return nil
}

// Validate required options, defined by the struct field names.
func (o *Options) Validate(required []string) string {
	var out []string
	naming := env.NewNamingConvention()
	reflection := reflect.Indirect(reflect.ValueOf(o))
	types := reflect.TypeOf(*o)

	for _, fieldName := range required {
		fieldType, exists := types.FieldByName(fieldName)
		if !exists {
			panic(errors.Errorf(`field "%s" doesn't exist in Options struct`, fieldName))
		}
		if reflection.FieldByName(fieldName).Len() > 0 {
			continue
		}

		humanName := strcase.ToDelimited(fieldName, ' ')
		if flag := fieldType.Tag.Get("flag"); len(flag) > 0 {
			out = append(out, errors.Errorf(
				`- Missing %s. Please use "--%s" flag or ENV variable "%s".`,
				humanName, flag, naming.Replace(flag),
			).Error())
		} else {
			out = append(out, errors.Errorf(`- Missing %s.`, humanName).Error())
		}
	}

	return strings.Join(out, "\n")
}

// StartAtTime parses the scheduled start instant, zero time when not set.
func (o *Options) StartAtTime() (time.Time, error) {
	if o.StartAt == "" {
		return time.Time{}, nil
	}
	at, err := time.Parse(time.RFC3339, o.StartAt)
	if err != nil {
		return time.Time{}, errors.Errorf(`invalid "start-at" value "%s": expected RFC 3339, eg. "2026-08-23T10:00:00+09:00"`, o.StartAt)
	}
	return at, nil
}

func (o *Options) normalize() {
	o.EgressURL = strings.TrimRight(o.EgressURL, "/")
	o.BackendURL = strings.TrimRight(o.BackendURL, "/")
	o.ProbeURL = strings.TrimRight(o.ProbeURL, "/")
	o.EgressKey = strings.TrimSpace(o.EgressKey)
}

// Dump the options for debugging, hide the egress key.
func (o *Options) Dump() string {
	re := regexp.MustCompile(`("EgressKey":"[^"]{1,7})[^"]*(")`)
	str := "Parsed options: " + json.MustEncodeString(o, false)
	return re.ReplaceAllString(str, `$1*****$2`)
}

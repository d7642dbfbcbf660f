// Package flagtools fills flags from environment variables.
//
// Call Parse before flag.Parse, so command line arguments take precedence over
// the environment. Flag "log-level" with Prefix "APP" is read from APP_LOG_LEVEL.
package flagtools

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

var Prefix string

func Parse() {
	if err := ParseSet(flag.CommandLine, Prefix); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func ParseSet(fs *flag.FlagSet, prefix string) error {
	var err error
	fs.VisitAll(func(f *flag.Flag) {
		if err != nil {
			return
		}
		val, ok := os.LookupEnv(EnvName(prefix, f.Name))
		if !ok {
			return
		}
		if setErr := fs.Set(f.Name, val); setErr != nil {
			err = fmt.Errorf("invalid value %q for env %s: %w", val, EnvName(prefix, f.Name), setErr)
		}
	})
	return err
}

func EnvName(prefix, name string) string {
	name = strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

// Package flagx holds small helpers that let several config layers share
// os.Args without tripping over each other's flags.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the flags listed in allowedFlags together with their
// values. Both "-f value" and "-f=value" forms are recognised; a token that
// starts with "-" is never taken as a value.
//
// The result is never nil, so it can be passed straight to FlagSet.Parse.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, found := strings.Cut(arg, "="); found && strings.HasPrefix(arg, "-") {
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// stringFlag parses a single string flag known under several aliases out of
// os.Args. The last occurrence wins; an absent flag yields "".
func stringFlag(setName, usage string, aliases ...string) string {
	var value string

	args := FilterArgs(os.Args[1:], prefixed(aliases))

	fs := flag.NewFlagSet(setName, flag.ContinueOnError)
	for _, a := range aliases {
		fs.StringVar(&value, a, "", usage)
	}
	_ = fs.Parse(args)

	return value
}

func prefixed(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = "-" + n
	}
	return out
}

// JsonConfigFlags returns the JSON config path given via -c or -config.
func JsonConfigFlags() string {
	return stringFlag("json", "Path to config file", "c", "config")
}

// EnvFileFlags returns the dotenv file path given via -env.
func EnvFileFlags() string {
	return stringFlag("env", "Path to .env file", "env")
}

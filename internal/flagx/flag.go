// Package flagx lets independent loaders each read their own flags from the
// same command line without tripping over flags they do not define.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// FilterArgs keeps only the allowed flags of args, with their values. Both
// "-c conf.json" and "--config=conf.json" forms are recognized; a following
// argument is taken as the value unless it starts with "-".
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
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

// Dashed returns the "-name" and "--name" spellings of each flag name.
func Dashed(names ...string) []string {
	out := make([]string, 0, 2*len(names))
	for _, n := range names {
		out = append(out, "-"+n, "--"+n)
	}
	return out
}

// Lookup returns the value of the string flag spelled as any of names in
// args, or "" when absent. The last occurrence wins.
func Lookup(args []string, names ...string) string {
	var value string
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, n := range names {
		fs.StringVar(&value, n, "", "")
	}
	_ = fs.Parse(FilterArgs(args, Dashed(names...)))
	return value
}

// JsonConfigFlags returns the JSON config path given with -c or -config.
func JsonConfigFlags() string {
	return Lookup(os.Args[1:], "c", "config")
}

// EnvFileFlags returns the dotenv path given with -e or -env-file.
func EnvFileFlags() string {
	return Lookup(os.Args[1:], "e", "env-file")
}

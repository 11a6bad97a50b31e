package main

import (
	"flag"
	"strings"
)

type stringSlice []string

func (s *stringSlice) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// cliArgs are the flags shared by every entrypoint.
type cliArgs struct {
	cfgPath         string
	modelOverride   string
	prompt          string
	resumeLast      bool
	configOverrides stringSlice
}

func newFlagSet(name string) (*flag.FlagSet, *cliArgs) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	args := &cliArgs{}

	fs.StringVar(&args.cfgPath, "config", "", "Path to config file (default ~/.meeple/config.toml)")
	fs.StringVar(&args.modelOverride, "model", "", "Model override")
	fs.StringVar(&args.modelOverride, "m", "", "Alias for --model")
	fs.StringVar(&args.prompt, "prompt", "", "Ask one question and exit")
	fs.BoolVar(&args.resumeLast, "resume", false, "Resume the most recent conversation")
	fs.Var(&args.configOverrides, "c", "Override config value key=value (repeatable)")

	return fs, args
}

func (a *cliArgs) finalizePrompt(fs *flag.FlagSet) {
	if a.prompt == "" && fs.NArg() > 0 {
		a.prompt = strings.Join(fs.Args(), " ")
	}
}

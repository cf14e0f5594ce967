package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command line to the shell completer
func completion(commander *subcommands.Commander) *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flagPredictors(flag.CommandLine),
	}
	commander.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(fs)
		sub := &complete.Command{Flags: flagPredictors(fs)}
		if cmd.Name() == "backup-upload" {
			sub.Args = predict.Files("*.zip")
		}
		root.Sub[cmd.Name()] = sub
	})
	return root
}

// flagPredictors predicts nothing after boolean flags and something after
// the rest. Known value sets are suggested.
func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	out := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			out[f.Name] = predict.Nothing
			return
		}
		switch f.Name {
		case "type":
			out[f.Name] = predict.Set{"income", "expense", "transfer"}
		case "interval":
			out[f.Name] = predict.Set{"day", "week", "month", "year"}
		case "session":
			out[f.Name] = predict.Files("*.json")
		case "o":
			out[f.Name] = predict.Dirs("*")
		default:
			out[f.Name] = predict.Something
		}
	})
	return out
}

// completionCmd holds the flags for the 'completion' subcommand.
type completionCmd struct{}

func (*completionCmd) Name() string     { return "completion" }
func (*completionCmd) Synopsis() string { return "explain how to enable shell completion" }
func (*completionCmd) Usage() string {
	return `ledgerbook completion
`
}

func (*completionCmd) SetFlags(*flag.FlagSet) {}

func (*completionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println(`Shell completion for bash, zsh and fish:

  install:    COMP_INSTALL=1 ledgerbook
  uninstall:  COMP_UNINSTALL=1 ledgerbook

Restart the shell afterwards.`)
	return subcommands.ExitSuccess
}

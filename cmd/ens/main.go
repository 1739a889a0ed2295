// ens CLI - load ensemble palettes, evaluate definitions, and explore
// them interactively.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/tliron/commonlog"

	"github.com/cmdkit/ensemble/ensemble"
	"github.com/cmdkit/ensemble/host"
	"github.com/cmdkit/ensemble/manifest"

	_ "github.com/tliron/commonlog/simple"
)

const (
	appName     = "ens"
	historyFile = ".ens_history"
	promptMain  = "ens> "
)

var log = commonlog.GetLogger(appName)

func main() {
	paletteFile := flag.String("f", "", "Load a palette.toml file before anything else")
	evalSource := flag.String("e", "", "Evaluate ensemble definition source and exit")
	dumpName := flag.String("dump", "", "Write a snapshot of the named ensemble and exit")
	dumpOut := flag.String("o", "", "Snapshot output file (default <name>.snap)")
	interactive := flag.Bool("i", false, "Start interactive REPL (default when no -e or -dump)")
	verbosity := flag.Int("verbose", 0, "Log verbosity (0 quiet, 2 debug)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", appName)
		fmt.Fprintf(os.Stderr, "Builds a command-ensemble registry from palettes and definitions.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -i                              # Start REPL\n", appName)
		fmt.Fprintf(os.Stderr, "  %s -f tools.toml -i                # Load a palette, then REPL\n", appName)
		fmt.Fprintf(os.Stderr, "  %s -e 'ensemble db {...}'          # Evaluate a definition\n", appName)
		fmt.Fprintf(os.Stderr, "  %s -f tools.toml -dump db -o db.snap  # Export a snapshot\n", appName)
	}
	flag.Parse()

	commonlog.Configure(*verbosity, nil)

	in := host.NewInterp()
	reg, err := ensemble.NewRegistry(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *paletteFile != "" {
		pal, err := manifest.Load(*paletteFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := pal.Register(reg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		log.Infof("loaded palette %q from %s", pal.Palette.Name, pal.Path)
	}

	if *evalSource != "" {
		if err := reg.EvalDefinition(*evalSource); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if *dumpName != "" {
		out := *dumpOut
		if out == "" {
			out = *dumpName + ".snap"
		}
		if err := dumpSnapshot(reg, *dumpName, out); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *interactive || *evalSource == "" {
		os.Exit(repl(reg))
	}
}

func dumpSnapshot(reg *ensemble.Registry, name, out string) error {
	data, err := reg.Snapshot(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return err
	}
	log.Infof("wrote %d byte snapshot of %q to %s", len(data), name, out)
	return nil
}

// ---------------------------------------------------------------------------
// repl
// ---------------------------------------------------------------------------

var helpText = `
REPL commands:
  :quit              Exit the REPL
  :help              Show this help
  :list              List top-level ensembles
  :usage NAME...     Show an ensemble's subcommand summary
  :dump NAME FILE    Write a snapshot of NAME to FILE

Anything starting with "ensemble" is evaluated as a definition;
everything else is invoked as a command.
`

func repl(reg *ensemble.Registry) int {
	fmt.Printf("%s REPL. Ctrl+D or :quit exits, :help lists commands.\n", appName)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(completer(reg))

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		line, err := readCommand(ln)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if err != nil {
			continue
		}
		code := strings.TrimSpace(line)
		if code == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(line, "\n", " "))

		if strings.HasPrefix(code, ":") {
			if done := replCommand(reg, code); done {
				return 0
			}
			continue
		}

		if err := evalLine(reg, line); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
		}
	}
}

// readCommand reads one logical command, continuing across lines while
// braces are unbalanced so multi-line definitions paste cleanly.
func readCommand(ln *liner.State) (string, error) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = strings.Repeat(" ", len(promptMain))
		}
		line, err := ln.Prompt(prompt)
		if err != nil {
			return "", err
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if braceDepth(b.String()) <= 0 {
			return b.String(), nil
		}
	}
}

func braceDepth(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return depth
}

func replCommand(reg *ensemble.Registry, code string) (done bool) {
	words := strings.Fields(code)
	switch words[0] {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Print(helpText)
	case ":list":
		names := reg.TopLevelNames()
		sort.Strings(names)
		for _, n := range names {
			fmt.Println(n)
		}
	case ":usage":
		if len(words) < 2 {
			fmt.Fprintln(os.Stderr, "usage: :usage NAME...")
			return false
		}
		usage, ok := reg.GetEnsembleUsage(strings.Join(words[1:], " "))
		if !ok {
			fmt.Fprintf(os.Stderr, "no ensemble %q\n", strings.Join(words[1:], " "))
			return false
		}
		fmt.Println(usage)
	case ":dump":
		if len(words) != 3 {
			fmt.Fprintln(os.Stderr, "usage: :dump NAME FILE")
			return false
		}
		if err := dumpSnapshot(reg, words[1], words[2]); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q. Type :help.\n", words[0])
	}
	return false
}

// evalLine treats "ensemble ..." input as definition source and
// everything else as a command invocation.
func evalLine(reg *ensemble.Registry, line string) error {
	if strings.HasPrefix(strings.TrimSpace(line), "ensemble") {
		return reg.EvalDefinition(line)
	}
	words, err := host.SplitList(line)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return nil
	}
	res, err := reg.Interp().Invoke(words[0], words[1:]...)
	if err != nil {
		return err
	}
	if res != "" {
		fmt.Println(res)
	}
	return nil
}

// completer offers top-level ensemble names, and part names once an
// ensemble has been picked.
func completer(reg *ensemble.Registry) liner.Completer {
	return func(line string) []string {
		words := strings.Fields(line)
		trailing := strings.HasSuffix(line, " ")

		if len(words) == 0 || (len(words) == 1 && !trailing) {
			prefix := ""
			if len(words) == 1 {
				prefix = words[0]
			}
			names := reg.TopLevelNames()
			sort.Strings(names)
			var out []string
			for _, n := range names {
				if strings.HasPrefix(n, prefix) {
					out = append(out, n+" ")
				}
			}
			return out
		}

		// Resolve everything but the word being completed.
		resolved := words
		prefix := ""
		if !trailing {
			resolved = words[:len(words)-1]
			prefix = words[len(words)-1]
		}
		ens, err := reg.FindEnsemble(resolved)
		if err != nil {
			return nil
		}
		base := strings.Join(resolved, " ") + " "
		var out []string
		for _, n := range ens.Parts().Names() {
			if strings.HasPrefix(n, "@") {
				continue
			}
			if strings.HasPrefix(n, prefix) {
				out = append(out, base+n)
			}
		}
		return out
	}
}

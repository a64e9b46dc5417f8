package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nyejames/beanstalk-sub005/internal/config"
	"github.com/nyejames/beanstalk-sub005/internal/diagfmt"
	"github.com/nyejames/beanstalk-sub005/internal/dump"
	"github.com/nyejames/beanstalk-sub005/internal/pipeline"
	"github.com/nyejames/beanstalk-sub005/internal/trace"
	"github.com/nyejames/beanstalk-sub005/internal/ui"
)

var compileCmd = &cobra.Command{
	Use:   "compile <hir-file> -o <out-file>",
	Short: "Compile a dumped HIR module to WASM or JS",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

var (
	compileOut string
)

func init() {
	compileCmd.Flags().StringVarP(&compileOut, "out", "o", "", "output artifact path (required)")
	_ = compileCmd.MarkFlagRequired("out")
}

func runCompile(cmd *cobra.Command, args []string) error {
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	maxDiags, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")

	cfg := config.Default()
	if _, err := os.Stat(cfgPath); err == nil {
		loaded, lerr := config.Load(cfgPath)
		if lerr != nil {
			return lerr
		}
		cfg = loaded
	}
	cfg.MaxDiagnostics = maxDiags

	hostReg, err := cfg.Registry()
	if err != nil {
		return err
	}

	raw, err := dump.ReadFile(args[0])
	if err != nil {
		return err
	}
	mod, err := dump.DecodeHIR(raw)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(mod.Functions))
	for i := range mod.Functions {
		names = append(names, fmt.Sprintf("fn%d", mod.Functions[i].ID))
	}

	ch := make(chan trace.Event, 64)
	sink := trace.NewChanSink(ch)

	var prog *tea.Program
	progDone := make(chan struct{})
	if !quiet && isTerminal(os.Stdout) {
		model := ui.NewModel("beanstalkc compile", names, ch)
		prog = tea.NewProgram(model)
		go func() {
			_, _ = prog.Run()
			close(progDone)
		}()
	} else {
		go func() {
			for range ch {
			}
			close(progDone)
		}()
	}

	result, cerr := pipeline.Compile(cmd.Context(), mod, hostReg, cfg, 0, sink)
	close(ch)
	<-progDone
	if cerr != nil {
		return cerr
	}

	opts := diagfmt.Options{NoColor: !colorEnabled(cmd, os.Stderr), Limit: maxDiags}
	if result.Diagnostics != nil && result.Diagnostics.Len() > 0 {
		diagfmt.Render(os.Stderr, result.Diagnostics, opts)
		diagfmt.Summary(os.Stderr, result.Diagnostics, opts)
	}
	if result.Diagnostics != nil && result.Diagnostics.HasErrors() {
		return fmt.Errorf("compilation failed")
	}

	var out []byte
	switch cfg.Backend {
	case config.BackendJS:
		out = []byte(result.JS.Source)
	default:
		out = result.Wasm.Bytes
	}
	return dump.WriteFile(compileOut, out)
}

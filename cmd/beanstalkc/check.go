package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nyejames/beanstalk-sub005/internal/borrow"
	"github.com/nyejames/beanstalk-sub005/internal/diag"
	"github.com/nyejames/beanstalk-sub005/internal/diagfmt"
	"github.com/nyejames/beanstalk-sub005/internal/dump"
)

var checkCmd = &cobra.Command{
	Use:   "check <hir-file>",
	Short: "Borrow-check a dumped HIR module without emitting an artifact",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	maxDiags, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	raw, err := dump.ReadFile(args[0])
	if err != nil {
		return err
	}
	mod, err := dump.DecodeHIR(raw)
	if err != nil {
		return err
	}

	bag := diag.NewBag(maxDiags)
	for i := range mod.Functions {
		res := borrow.Check(&mod.Functions[i], mod.TypeContext)
		bag.Merge(res.Diagnostics)
	}
	opts := diagfmt.Options{NoColor: !colorEnabled(cmd, os.Stderr), Limit: maxDiags}
	diagfmt.Render(os.Stdout, bag, opts)
	diagfmt.Summary(os.Stdout, bag, opts)
	if bag.HasErrors() {
		return fmt.Errorf("borrow check failed")
	}
	return nil
}

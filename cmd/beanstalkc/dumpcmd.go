package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nyejames/beanstalk-sub005/internal/dump"
	"github.com/nyejames/beanstalk-sub005/internal/lir"
)

var dumpHIRCmd = &cobra.Command{
	Use:   "dump-hir <hir-file>",
	Short: "Pretty-print the function list of a dumped HIR module",
	Args:  cobra.ExactArgs(1),
	RunE:  runDumpHIR,
}

var dumpLIRCmd = &cobra.Command{
	Use:   "dump-lir <hir-file> -o <lir-file>",
	Short: "Lower a dumped HIR module to LIR and dump it back out",
	Args:  cobra.ExactArgs(1),
	RunE:  runDumpLIR,
}

var dumpLIROut string

func init() {
	dumpLIRCmd.Flags().StringVarP(&dumpLIROut, "out", "o", "", "output LIR dump path (required)")
	_ = dumpLIRCmd.MarkFlagRequired("out")
}

func runDumpHIR(cmd *cobra.Command, args []string) error {
	raw, err := dump.ReadFile(args[0])
	if err != nil {
		return err
	}
	mod, err := dump.DecodeHIR(raw)
	if err != nil {
		return err
	}
	for i := range mod.Functions {
		fn := &mod.Functions[i]
		fmt.Printf("fn%d: %d blocks, entry=%d\n", fn.ID, len(fn.Blocks), fn.Entry)
	}
	return nil
}

func runDumpLIR(cmd *cobra.Command, args []string) error {
	raw, err := dump.ReadFile(args[0])
	if err != nil {
		return err
	}
	mod, err := dump.DecodeHIR(raw)
	if err != nil {
		return err
	}
	lirMod, lerr := lir.LowerModule(mod)
	if lerr != nil {
		return fmt.Errorf("%s", lerr.Error())
	}
	out, err := dump.EncodeLIR(lirMod)
	if err != nil {
		return err
	}
	return dump.WriteFile(dumpLIROut, out)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nyejames/beanstalk-sub005/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the beanstalkc version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(version.String())
		return nil
	},
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voxbook/voxbook/internal/deps"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Check for the speech engines and encoders voxbook needs",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		statuses, err := deps.CheckAll()
		fmt.Print(deps.RenderReport(statuses))
		return err
	},
}

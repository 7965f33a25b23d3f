package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newInvalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate <id>",
		Short: "Drop the cached model of an identifier",
		Long: "Invalidate drops the in-memory model of an identifier so the next request reloads it. " +
			"The cache lives in a single process, so from the command line this only validates the identifier; " +
			"use train to replace a stored model.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Invalidate(args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "invalidated %s\n", args[0])
			return nil
		},
	}
}

func (c *CLI) newForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <id>...",
		Short: "Delete stored models so the next prediction trains from scratch",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, raw := range args {
				if err := c.app.Forget(raw); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "forgot %s\n", raw)
			}
			return nil
		},
	}
}

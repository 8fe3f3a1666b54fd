package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cottand/motifsat/optimizer"
)

var CanonCmd = &cobra.Command{
	Use:          "canon patterns-file",
	Short:        "Print the canonical form of every pattern of a patterns file",
	RunE:         runCanon,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

func runCanon(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	inputs, err := readPatterns(args[0])
	if err != nil {
		return err
	}
	c, err := newCollaborators(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	canonical, err := optimizer.Canonicalize(cmd.Context(), c.canon, inputs)
	if err != nil {
		return err
	}
	for _, t := range canonical {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), t); err != nil {
			return err
		}
	}
	return nil
}

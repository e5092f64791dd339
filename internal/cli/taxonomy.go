package cli

import "github.com/spf13/cobra"

func (c *console) newTaxonomyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "taxonomy",
		Short: "List the activity categories and types enabled for this account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.render.taxonomy(c.engine.Taxonomy())
			return nil
		},
	}
}

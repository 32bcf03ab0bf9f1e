package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tuxmigrate/tuxmigrate/internal/prompt"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage prompt templates",
}

var templatesInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Write the built-in prompt templates to ~/.tuxmigrate/templates for customization",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := prompt.InstallBuiltinTemplates(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Templates installed. Existing files were left untouched.")
		return nil
	},
}

func init() {
	templatesCmd.AddCommand(templatesInstallCmd)
}

// Command todoctl administers a todolists database: backups, migrations and users.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "todoctl",
		Short:         "Administer the to-do lists database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newExportCommand(),
		newImportCommand(),
		newMigrateCommand(),
		newUserCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newRenameCmd creates the rename command
func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename [path] [new-name]",
		Short: "Rename a library entry in place",
		Long: `Rename a file or folder within its current directory.
For files, the original extension is preserved unless the new name
already carries it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			if err := mgr.Rename(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("renamed to %s\n", args[1])
			return nil
		},
	}
}

package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// newCombineCmd creates the combine command
func newCombineCmd() *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "combine [folder-name] [path]...",
		Short: "Move entries into a new folder",
		Long: `Create a new folder and move every given entry into it.
The folder is created under --parent, or under the first entry's
directory when --parent is not given.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			name, paths := args[0], args[1:]
			parentPath := parent
			if parentPath == "" {
				parentPath = filepath.Dir(paths[0])
			}

			if err := mgr.Combine(cmd.Context(), paths, name, parentPath); err != nil {
				return err
			}
			fmt.Printf("combined %d entries into %s\n", len(paths), filepath.Join(parentPath, name))
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "directory to create the new folder in")
	return cmd
}

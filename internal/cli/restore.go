package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newRestoreCmd creates the restore command
func newRestoreCmd() *cobra.Command {
	var folder bool

	cmd := &cobra.Command{
		Use:   "restore [path]",
		Short: "Restore a file's extension from its content",
		Long: `Restore a file's extension by sniffing its magic numbers.
With --folder, restore the extension of every file directly under the
given directory; per-file failures are logged and skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			if folder {
				processed, err := mgr.LocalStore().RestoreFolderExtensions(args[0])
				if err != nil {
					return err
				}
				for _, p := range processed {
					fmt.Println(p)
				}
				fmt.Printf("restored %d file(s)\n", len(processed))
				return nil
			}

			if err := mgr.LocalStore().RestoreExtension(args[0]); err != nil {
				return err
			}
			fmt.Println("extension restored")
			return nil
		},
	}

	cmd.Flags().BoolVar(&folder, "folder", false, "restore every file in a directory")
	return cmd
}

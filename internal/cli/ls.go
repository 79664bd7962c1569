package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kadajett/musicManager/internal/domain"
)

// newLsCmd creates the ls command
func newLsCmd() *cobra.Command {
	var sortBy string
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List a library directory",
		Long: `List the entries of a library directory, directories first.
Without a path, the persisted default location (or the home directory)
is used. Sorting by title or track number reads the audio tags of the
directory's files. With --recursive, list every audio file beneath the
directory instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			ctx := cmd.Context()
			ctrl := mgr.Local()

			// No path is committed yet, so this only sets the criterion
			// for the upcoming load
			if err := ctrl.SetSort(ctx, domain.ParseSortCriterion(sortBy)); err != nil {
				return err
			}

			if len(args) == 1 {
				err = ctrl.Navigate(ctx, args[0])
			} else {
				err = ctrl.Initialize(ctx)
			}
			if err != nil {
				return err
			}

			if recursive {
				audio, err := mgr.LocalStore().RecursiveAudioFiles(ctx, ctrl.Path())
				if err != nil {
					return err
				}
				for _, e := range audio {
					fmt.Println(e.Path)
				}
				return nil
			}

			listing := ctrl.Listing()
			if len(listing) == 0 {
				fmt.Println("(empty)")
				return nil
			}

			for _, e := range listing {
				switch {
				case e.IsDir:
					fmt.Printf("%s/\n", e.Name)
				case e.IsAudio:
					fmt.Printf("%s\n", e.Name)
				default:
					fmt.Printf("%s (not audio)\n", e.Name)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&sortBy, "sort", "s", "name", "sort criterion: name, title, or track")
	cmd.Flags().BoolVarP(&recursive, "recursive", "R", false, "list every audio file beneath the directory")
	return cmd
}

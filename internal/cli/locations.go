package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kadajett/musicManager/internal/domain"
)

// newLocationsCmd creates the locations command and its subcommands
func newLocationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Manage remembered library locations",
		Long: `Manage the persisted library locations: the default starting
directory, the recently visited list, and the favorites list.`,
	}

	cmd.AddCommand(newDefaultCmd())
	cmd.AddCommand(newRecentCmd())
	cmd.AddCommand(newFavoriteCmd())
	return cmd
}

func newDefaultCmd() *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "default [path]",
		Short: "Show or set the default starting location",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			ctx := cmd.Context()

			if clear {
				if err := mgr.State().ClearDefaultLocation(ctx); err != nil {
					return err
				}
				fmt.Println("default location cleared")
				return nil
			}

			if len(args) == 1 {
				if err := mgr.State().SetDefaultLocation(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("default location set to %s\n", args[0])
				return nil
			}

			path, err := mgr.State().DefaultLocation(ctx)
			if errors.Is(err, domain.ErrNotFound) {
				fmt.Println("no default location set")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "clear the default location")
	return cmd
}

func newRecentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "List recently visited locations, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			paths, err := mgr.State().RecentLocations(cmd.Context())
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Println("no recent locations")
				return nil
			}
			for _, p := range paths {
				fmt.Println(p)
			}
			return nil
		},
	}
}

func newFavoriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorite",
		Short: "Manage favorite locations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add [path]",
		Short: "Add a location to favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			if err := mgr.State().AddFavoriteLocation(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("added %s to favorites\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove [path]",
		Short: "Remove a location from favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			if err := mgr.State().RemoveFavoriteLocation(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("removed %s from favorites\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List favorite locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			paths, err := mgr.State().FavoriteLocations(cmd.Context())
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Println("no favorite locations")
				return nil
			}
			for _, p := range paths {
				fmt.Println(p)
			}
			return nil
		},
	})

	return cmd
}

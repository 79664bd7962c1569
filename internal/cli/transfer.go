package cli

import (
	"fmt"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Kadajett/musicManager/internal/domain"
	"github.com/Kadajett/musicManager/internal/progress"
)

// newTransferCmd creates the transfer command
func newTransferCmd() *cobra.Command {
	var limit int
	var history bool

	cmd := &cobra.Command{
		Use:   "transfer [source] [destination]",
		Short: "Transfer a folder or file onto a device",
		Long: `Transfer source onto a device directory.
Every transfer is archived in a staging directory, copied across,
extracted, and verified file by file against a SHA-256 manifest.
With --history, show past transfers instead of running one.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if history {
				return cobra.MaximumNArgs(0)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			defer mgr.Close()

			ctx := cmd.Context()

			if history {
				records, err := mgr.State().TransferHistory(ctx, limit)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Println("no transfers recorded")
					return nil
				}
				for _, r := range records {
					fmt.Printf("%s  %-7s  %s -> %s  (%d files, %s)\n",
						r.StartTime.Format("2006-01-02 15:04"),
						r.Status,
						r.SourcePath,
						r.TargetPath,
						r.FilesTransferred,
						progress.FormatBytes(r.BytesTransferred))
					if r.Error != "" {
						fmt.Printf("    %s\n", r.Error)
					}
				}
				return nil
			}

			source, target := args[0], args[1]

			// Render the progress stream while the transfer runs
			ch, cancel := mgr.ProgressFeed().Subscribe()
			defer cancel()

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				renderProgress(ch)
			}()

			result, err := mgr.Transfer(ctx, source, target)
			cancel()
			wg.Wait()

			if err != nil {
				return err
			}
			fmt.Printf("\n%s\n", result.Message)
			return nil
		},
	}

	cmd.Flags().BoolVar(&history, "history", false, "show past transfers")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of history records to show")
	return cmd
}

// renderProgress draws a progress bar from the job stream
func renderProgress(ch <-chan domain.TransferJob) {
	var bar *progressbar.ProgressBar
	var lastStatus domain.TransferStatus

	for job := range ch {
		if job.Status != lastStatus {
			lastStatus = job.Status
			if bar != nil {
				bar.Finish()
			}
			if job.TotalBytes > 0 {
				bar = progressbar.NewOptions64(job.TotalBytes,
					progressbar.OptionSetDescription(string(job.Status)),
					progressbar.OptionShowBytes(true),
					progressbar.OptionClearOnFinish(),
				)
			} else {
				bar = nil
				fmt.Printf("%s...\n", job.Status)
			}
		}
		if bar != nil {
			bar.Set64(job.ProcessedBytes)
		}
	}
	if bar != nil {
		bar.Finish()
	}
}

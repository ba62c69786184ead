package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/restaurant-ordering/services"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Finalize table sessions whose TTL has elapsed",
	RunE:  runSweep,
}

var fixDuplicatesCmd = &cobra.Command{
	Use:   "fix-duplicates",
	Short: "Repair tables holding more than one active session",
	Long: `For each table with several ACTIVE sessions, keep the newest one
(ties go to the lowest id) and finalize the others with reason "duplicate".
Use --dry-run to only print the detection report.`,
	RunE: runFixDuplicates,
}

func init() {
	fixDuplicatesCmd.Flags().Bool("dry-run", false, "print the duplicate report without changing anything")
	rootCmd.AddCommand(sweepCmd, fixDuplicatesCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.close()

	sweeper := services.NewExpirationSweeper(services.Deps{DB: rt.db, Logger: rt.log})
	finalized, err := sweeper.FinalizeExpired(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "finalized %d expired session(s)\n", len(finalized))
	for _, s := range finalized {
		fmt.Fprintf(cmd.OutOrStdout(), "  session %d table %d started %s ttl %dm\n",
			s.ID, s.TableID, s.StartedAt.Format("2006-01-02 15:04:05"), s.TTLMinutes)
	}
	return nil
}

func runFixDuplicates(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.close()

	resolver := services.NewDuplicateResolver(services.Deps{DB: rt.db, Logger: rt.log})
	out := json.NewEncoder(cmd.OutOrStdout())
	out.SetIndent("", "  ")

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		report, err := resolver.State(cmd.Context())
		if err != nil {
			return err
		}
		return out.Encode(report)
	}

	reports, err := resolver.FixDuplicates(cmd.Context())
	if encErr := out.Encode(reports); encErr != nil && err == nil {
		err = encErr
	}
	return err
}

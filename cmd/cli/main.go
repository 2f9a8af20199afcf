package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ticketeye/internal/cli/commands"
)

var rootCmd = &cobra.Command{
	Use:   "ticketeye",
	Short: "TicketEye CLI - SLA monitoring for support tickets",
	Long: `TicketEye CLI is a command-line tool for managing the SLA monitoring
engine of a support ticketing platform: reviewing alerts, acknowledging
escalations, and tuning thresholds.`,
}

func init() {
	rootCmd.AddCommand(commands.NewAlertCommand())
	rootCmd.AddCommand(commands.NewSLACommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ticketeye/internal/api/client"
)

func NewAlertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "alert",
		Short:   "SLA alert management commands",
		Aliases: []string{"alerts", "a"},
	}

	cmd.AddCommand(newAlertListCommand())
	cmd.AddCommand(newAlertAckCommand())
	cmd.AddCommand(newAlertAckAllCommand())
	cmd.AddCommand(newAlertDismissCommand())
	cmd.AddCommand(newAlertClearCommand())

	return cmd
}

func newAlertListCommand() *cobra.Command {
	var (
		activeOnly bool
		history    bool
		ticketID   string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List SLA alerts",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			var alerts []alertRow
			if history {
				rows, err := c.AlertHistory(ticketID)
				if err != nil {
					return fmt.Errorf("failed to fetch alert history: %v", err)
				}
				for _, a := range rows {
					alerts = append(alerts, alertRow{a.AlertID, a.TicketID, string(a.Level), a.Message, a.Acknowledged, a.CreatedAt})
				}
			} else {
				rows, err := c.ListAlerts(activeOnly)
				if err != nil {
					return fmt.Errorf("failed to list alerts: %v", err)
				}
				for _, a := range rows {
					alerts = append(alerts, alertRow{a.AlertID, a.TicketID, string(a.Level), a.Message, a.Acknowledged, a.CreatedAt})
				}
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ALERT ID\tTICKET\tLEVEL\tACKED\tTIME\tMESSAGE")
			for _, a := range alerts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\t%s\n",
					a.id, a.ticket, a.level, a.acked,
					a.createdAt.Format(time.RFC3339), a.message)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "Show only unacknowledged alerts")
	cmd.Flags().BoolVar(&history, "history", false, "Show the persisted alert history instead of the live log")
	cmd.Flags().StringVar(&ticketID, "ticket", "", "Filter history by ticket id")

	return cmd
}

type alertRow struct {
	id        string
	ticket    string
	level     string
	message   string
	acked     bool
	createdAt time.Time
}

func newAlertAckCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ack <alert-id>",
		Short:   "Acknowledge an alert",
		Args:    cobra.ExactArgs(1),
		Aliases: []string{"acknowledge"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}
			if err := c.AcknowledgeAlert(args[0]); err != nil {
				return fmt.Errorf("failed to acknowledge alert: %v", err)
			}
			fmt.Printf("Alert %s acknowledged\n", args[0])
			return nil
		},
	}
}

func newAlertAckAllCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ack-all",
		Short: "Acknowledge every alert in the log",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}
			if err := c.AcknowledgeAll(); err != nil {
				return fmt.Errorf("failed to acknowledge alerts: %v", err)
			}
			fmt.Println("All alerts acknowledged")
			return nil
		},
	}
}

func newAlertDismissCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <alert-id>",
		Short: "Remove an alert from the log without acknowledging it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}
			if err := c.DismissAlert(args[0]); err != nil {
				return fmt.Errorf("failed to dismiss alert: %v", err)
			}
			fmt.Printf("Alert %s dismissed\n", args[0])
			return nil
		},
	}
}

func newAlertClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the alert log and reset escalation tracking",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}
			if err := c.ClearAlerts(); err != nil {
				return fmt.Errorf("failed to clear alerts: %v", err)
			}
			fmt.Println("Alert log cleared")
			return nil
		},
	}
}

package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ticketeye/internal/api/client"
	"github.com/ticketeye/internal/engine"
)

func NewSLACommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sla",
		Short: "SLA engine configuration commands",
	}

	cmd.AddCommand(newConfigGetCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newEnableCommand(true))
	cmd.AddCommand(newEnableCommand(false))

	return cmd
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the current SLA configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			cfg, err := c.GetConfig()
			if err != nil {
				return fmt.Errorf("failed to fetch config: %v", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintf(w, "Warning threshold\t%.2f hours\n", cfg.WarningThresholdHours)
			fmt.Fprintf(w, "Danger threshold\t%.2f hours\n", cfg.DangerThresholdHours)
			fmt.Fprintf(w, "Check interval\t%d ms\n", cfg.CheckIntervalMs)
			fmt.Fprintf(w, "Sound\t%v\n", cfg.SoundEnabled)
			fmt.Fprintf(w, "Notifications\t%v\n", cfg.NotificationsEnabled)
			return w.Flush()
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	var (
		warning  float64
		danger   float64
		interval int
		sound    string
		notify   string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update SLA configuration fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}

			var update engine.ConfigUpdate
			if cmd.Flags().Changed("warning-hours") {
				update.WarningThresholdHours = &warning
			}
			if cmd.Flags().Changed("danger-hours") {
				update.DangerThresholdHours = &danger
			}
			if cmd.Flags().Changed("interval-ms") {
				update.CheckIntervalMs = &interval
			}
			if cmd.Flags().Changed("sound") {
				v := sound == "on"
				update.SoundEnabled = &v
			}
			if cmd.Flags().Changed("notifications") {
				v := notify == "on"
				update.NotificationsEnabled = &v
			}

			cfg, err := c.UpdateConfig(update)
			if err != nil {
				return fmt.Errorf("failed to update config: %v", err)
			}

			fmt.Printf("Config updated: warning=%.2fh danger=%.2fh interval=%dms sound=%v notifications=%v\n",
				cfg.WarningThresholdHours, cfg.DangerThresholdHours,
				cfg.CheckIntervalMs, cfg.SoundEnabled, cfg.NotificationsEnabled)
			return nil
		},
	}

	cmd.Flags().Float64Var(&warning, "warning-hours", 0, "Warning threshold in hours")
	cmd.Flags().Float64Var(&danger, "danger-hours", 0, "Danger threshold in hours")
	cmd.Flags().IntVar(&interval, "interval-ms", 0, "Poll interval in milliseconds")
	cmd.Flags().StringVar(&sound, "sound", "", "Sound cue (on/off)")
	cmd.Flags().StringVar(&notify, "notifications", "", "Notifications (on/off)")

	return cmd
}

func newEnableCommand(enable bool) *cobra.Command {
	use, short := "enable", "Start the SLA poll loop"
	if !enable {
		use, short = "disable", "Stop the SLA poll loop"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return fmt.Errorf("failed to create client: %v", err)
			}
			if err := c.SetEnabled(enable); err != nil {
				return fmt.Errorf("failed to update engine state: %v", err)
			}
			if enable {
				fmt.Println("SLA monitoring enabled")
			} else {
				fmt.Println("SLA monitoring disabled")
			}
			return nil
		},
	}
}

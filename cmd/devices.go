package cmd

import (
	"fmt"

	"rsb-interview-lab/internal/audio/device"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio input devices",
	Long: `List the microphones PortAudio can open. Pass a name to
INTERVIEW_INPUT_DEVICE to record from a device other than the default.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		devices, err := device.ListInputDevices()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(devices) == 0 {
			fmt.Fprintln(out, "No input devices found")
			return nil
		}

		for _, d := range devices {
			marker := " "
			if d.IsDefault {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %s (%d ch, %.0f Hz)\n", marker, d.Name, d.MaxInputChannels, d.DefaultSampleRate)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

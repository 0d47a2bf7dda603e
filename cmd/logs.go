package cmd

import (
	"os"
	"time"

	"github.com/josephlewis42/mysh/core/ttylog"
	"github.com/spf13/cobra"
)

var (
	idleTimeLimit time.Duration
	castDir       string
)

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore sessions recorded with --record.",
}

// playCommand replays a recording in real time
var playCommand = &cobra.Command{
	Use:   "play RECORDING",
	Short: "Replay a recorded session in the terminal.",
	Long:  `Plays a recorded interactive session back to the current terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()
		source := ttylog.NewLogSource(args[0], fd)

		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		sink = ttylog.NewRealTimePlayback(idleTimeLimit, sink)
		return ttylog.Replay(source, sink)
	},
}

// catCommand prints a recording without pauses
var catCommand = &cobra.Command{
	Use:   "cat RECORDING",
	Short: "Print full output of recorded session to a terminal.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		source := ttylog.NewLogSource(args[0], fd)
		sink := ttylog.NewClientOutput(cmd.OutOrStdout())

		return ttylog.Replay(source, sink)
	},
}

// asciicastCmd converts a recording to the asciicast format
var asciicastCmd = &cobra.Command{
	Use:   "asciicast INPUT.log > OUTPUT.cast",
	Short: "Convert a recording to asciicast (asciinema) format.",
	Long:  `Convert a user-mode-linux recording to asciicast (asciinema) format.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		source := ttylog.NewLogSource(args[0], fd)
		sink := ttylog.NewAsciicastLogSink(cmd.OutOrStdout(), castDir)

		return ttylog.Replay(source, sink)
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(playCommand)
	logsCmd.AddCommand(asciicastCmd)
	logsCmd.AddCommand(catCommand)

	// cat doesn't allow idle time
	asciicastCmd.Flags().StringVar(&castDir, "dir", "", "working directory of the recorded session, shown in the header")
	playCommand.Flags().DurationVarP(&idleTimeLimit, "idle-time-limit", "i", 3*time.Second, "Maximum time output can be idle. (e.g. 3s, 2m, 100ms)")
}

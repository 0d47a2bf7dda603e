package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/josephlewis42/mysh/core/config"
	"github.com/josephlewis42/mysh/core/history"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// openHistoryLog opens the history backend named by the configuration.
func openHistoryLog(configuration *config.Configuration) (history.Log, func() error, error) {
	switch configuration.HistoryBackend {
	case history.BackendSQLite:
		// The database is opened once, so pin it to the starting directory.
		path, err := filepath.Abs(configuration.HistoryFile)
		if err != nil {
			return nil, nil, err
		}
		db, err := history.OpenSQLiteLog(path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil

	default:
		fileLog := history.NewFileLog(afero.NewOsFs(), configuration.HistoryFile)
		return fileLog, func() error { return nil }, nil
	}
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the saved history.",
	Long:  `Show the history saved by previous sessions, most recent first.`,
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		historyLog, closeHistory, err := openHistoryLog(configuration)
		if err != nil {
			return err
		}
		defer closeHistory()

		entries, err := historyLog.Load()
		if err != nil {
			return err
		}

		return history.NewStore(entries).Show(cmd.OutOrStdout())
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the saved history.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		historyLog, closeHistory, err := openHistoryLog(configuration)
		if err != nil {
			return err
		}
		defer closeHistory()

		if err := historyLog.Save(nil); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", historyLog.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyClearCmd)
}

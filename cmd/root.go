package cmd

import (
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"

	"github.com/josephlewis42/mysh/core"
	"github.com/josephlewis42/mysh/core/config"
	"github.com/josephlewis42/mysh/core/history"
	"github.com/josephlewis42/mysh/core/logger"
	"github.com/josephlewis42/mysh/core/proc"
	"github.com/josephlewis42/mysh/core/shell"
	"github.com/josephlewis42/mysh/core/ttylog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	cfgPath    string
	debug      bool
	recordPath string

	exitStatus int
)

func loadConfig() (*config.Configuration, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}

	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

func newAppLogger(cmd *cobra.Command) *log.Logger {
	if !debug {
		return log.New(io.Discard, "", 0)
	}
	return log.New(cmd.ErrOrStderr(), "[mysh] ", 0)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mysh",
	Short: "A tiny interactive shell",
	Long: `An interactive shell with a fixed set of builtins that can start, track
and terminate programs, and keeps a history that survives restarts.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		appLog := newAppLogger(cmd)

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		tokenizer, err := shell.NewTokenizer(configuration.Tokenizer)
		if err != nil {
			return err
		}

		eventLogger := logger.NewNopLogger()
		eventFd, err := configuration.OpenEventLog()
		switch {
		case err != nil:
			appLog.Printf("Couldn't open event log, events won't be recorded: %v", err)
		case eventFd != nil:
			defer eventFd.Close()
			eventLogger = logger.NewJsonLinesLogRecorder(eventFd)
			appLog.Printf("Logging events to %s", configuration.EventLog)
		}
		events := eventLogger.NewSession()
		appLog.Printf("Session %s", events.SessionID())

		var (
			stdin  io.Reader = os.Stdin
			stdout           = cmd.OutOrStdout()
			stderr           = cmd.ErrOrStderr()
		)
		if recordPath != "" {
			recordFd, err := os.Create(recordPath)
			if err != nil {
				return err
			}
			defer recordFd.Close()

			wd, err := os.Getwd()
			if err != nil {
				appLog.Printf("Couldn't get working directory: %v", err)
			}
			recorder := ttylog.NewRecorder(stdin, stdout, stderr, ttylog.NewLogSink(recordPath, recordFd, wd))
			stdin, stdout, stderr = recorder.Stdin(), recorder.Stdout(), recorder.Stderr()
			appLog.Printf("Recording session to %s", recordPath)
		}

		historyLog, closeHistory, err := openHistoryLog(configuration)
		if err != nil {
			return err
		}
		defer closeHistory()

		entries, err := historyLog.Load()
		if err != nil {
			// Keep whatever was read, the next save would drop the rest.
			appLog.Printf("Couldn't load all history from %s: %v", historyLog.Path(), err)
		}
		appLog.Printf("Loaded %d history entries", len(entries))

		hostFs := afero.NewOsFs()
		dispatcher := &core.Dispatcher{
			History: history.NewStore(entries),
			Log:     historyLog,
			Procs: &proc.Manager{
				Name:     core.DefaultName,
				Registry: proc.NewRegistry(),
				// Children talk to the real terminal, not the recorder.
				OS:      &proc.HostOS{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr},
				Fs:      hostFs,
				Stdout:  stdout,
				Stderr:  stderr,
				Events:  events,
				Limiter: configuration.SpawnLimiter(),
			},
			Fs:        hostFs,
			Chdir:     os.Chdir,
			Stdout:    stdout,
			Stderr:    stderr,
			Tokenizer: tokenizer,
			Events:    events,
		}

		sh, err := core.NewShell(dispatcher, core.ShellOptions{
			Stdin:  stdin,
			Stdout: stdout,
			Stderr: stderr,
			Prompt: configuration.Prompt,
			Debug:  debug,
		})
		if err != nil {
			return err
		}
		defer sh.Close()

		// Ctrl-C while a foreground child runs is meant for the child.
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt)
		defer func() {
			signal.Stop(sigs)
			close(sigs)
		}()
		go func() {
			for sig := range sigs {
				appLog.Printf("Got signal %q, ignoring", sig)
			}
		}()

		exitStatus = sh.Run()
		appLog.Printf("Exiting with status %d", exitStatus)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
	os.Exit(exitStatus)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config path, the built-in defaults are used if empty")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log diagnostics and show the working directory in the prompt")
	rootCmd.Flags().StringVar(&recordPath, "record", "", "record the session to a file (.cast for asciicast, user-mode-linux otherwise)")
}

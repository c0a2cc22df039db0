// heboris runs the platform layer of Heboris C.E. on its own: it opens the
// display described by the configuration record, plays the sound check and
// shows the frame pacing on screen.
//
// Usage:
//
//	heboris                 - Run the platform check
//	heboris displays        - List displays and their modes
//	heboris config          - Print the configuration record
//	heboris config --reset  - Write a default configuration record
//
// Global flags:
//
//	--base <dir>       - Base directory (default: working directory)
//	--settings <path>  - Settings file (default: <base>/settings.yaml)
//	--debug            - Verbose logging
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	flagBase     string
	flagSettings string
	flagDebug    bool
	flagFrames   int
	flagReset    bool
)

// app is the state shared by every command once flags are parsed.
type app struct {
	baseDir  string
	settings Settings
	log      *log.Logger
	closeLog func()
}

var cur app

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "heboris",
	Short: "Heboris C.E. platform layer check",
	Long: `Opens the window and audio device the way the game does, draws the
frame rate with the text layers and plays a sound check.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE:               runCheck,
}

var displaysCmd = &cobra.Command{
	Use:   "displays",
	Short: "List displays and their modes",
	RunE:  runDisplays,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print or reset the configuration record",
	RunE:  runConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBase, "base", "", "Base directory (default: working directory)")
	rootCmd.PersistentFlags().StringVar(&flagSettings, "settings", "", "Settings file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Verbose logging")
	rootCmd.Flags().IntVar(&flagFrames, "frames", 0, "Stop after this many frames (0 = until the window closes)")
	configCmd.Flags().BoolVar(&flagReset, "reset", false, "Replace the record with defaults")

	rootCmd.AddCommand(displaysCmd)
	rootCmd.AddCommand(configCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	base := flagBase
	if base == "" {
		var err error
		if base, err = os.Getwd(); err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
	}
	s, err := loadSettings(base, flagSettings)
	if err != nil {
		return err
	}
	logger, closeLog := setupLogging(base, flagDebug || s.Debug)
	cur = app{baseDir: base, settings: s, log: logger, closeLog: closeLog}
	logger.Debug("settings loaded", "base", base, "data", s.DataDir, "write", s.WriteDir)
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if cur.closeLog != nil {
		cur.closeLog()
	}
	return nil
}

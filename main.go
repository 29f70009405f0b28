// Package main provides the entry point for the focusbox CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/focusbox/internal/config"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	outputPath string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "focusbox [TASKS]",
		Short: "Render a guided focus session to a single audio file",
		Long: paragraph(
			fmt.Sprintf("\nRender a task list to one %s: a background tone or noise, spoken intros, reminders and countdowns, and a cue between tasks.", keyword("focus track")),
		),
		Example:          paragraph("focusbox\nfocusbox tasks.yml -o session.mp3\nfocusbox --background noise --policy every-other"),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
		log.Debug("Using configuration file", "path", configFile)
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		viper.Set("cache.enabled", false)
	}
	return nil
}

// defaultTasksFile is read when no task list is given.
const defaultTasksFile = "tasks.json"

func tasksArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultTasksFile
}

// loadConfig validates the merged file, environment and flag settings.
func loadConfig() (config.Config, error) {
	return config.LoadFromViper(viper.GetViper())
}

func execute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sum, err := render(ctx, cfg, tasksArg(args), outputPath)
	if err != nil {
		return err
	}
	printSummary(os.Stdout, sum)
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every step")
	rootCmd.PersistentFlags().String("background", "", "background: binaural, noise or silence")
	rootCmd.PersistentFlags().String("cue", "", "end-of-task cue: tone or arpeggio")
	rootCmd.PersistentFlags().String("policy", "", "reminder policy: every-minute, skip-final, every-other or none")
	rootCmd.PersistentFlags().StringP("language", "l", "", "speech language code")
	rootCmd.PersistentFlags().Bool("slow", false, "speak slowly")
	rootCmd.PersistentFlags().Uint64("seed", 0, "noise seed (0 for random)")
	rootCmd.PersistentFlags().Bool("no-cache", false, "do not use the speech clip cache")
	rootCmd.PersistentFlags().StringP("format", "f", "", "output format: mp3, wav, flac or ogg")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "output file (default focus_box_<timestamp>.<format>)")

	// Config bindings
	_ = viper.BindPFlag("background.type", rootCmd.PersistentFlags().Lookup("background"))
	_ = viper.BindPFlag("cue.type", rootCmd.PersistentFlags().Lookup("cue"))
	_ = viper.BindPFlag("reminders.policy", rootCmd.PersistentFlags().Lookup("policy"))
	_ = viper.BindPFlag("speech.language", rootCmd.PersistentFlags().Lookup("language"))
	_ = viper.BindPFlag("speech.slow", rootCmd.PersistentFlags().Lookup("slow"))
	_ = viper.BindPFlag("background.noise.seed", rootCmd.PersistentFlags().Lookup("seed"))
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("format"))

	config.SetDefaults(viper.GetViper())

	rootCmd.AddCommand(planCmd, watchCmd, cacheCmd, configCmd, manCmd)
}

var envKeyReplacer = strings.NewReplacer(".", "_")

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "focusbox")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "focusbox")}, dirs...)
	}

	if c := os.Getenv("FOCUSBOX_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("focusbox")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("focusbox")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	configFile = filepath.Join(dirs[0], "focusbox.yml")
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/go-battle-stats/internal/config"
	"github.com/pable/go-battle-stats/internal/observability"
	"github.com/pable/go-battle-stats/internal/parser"
)

var (
	cfgFile string
	cfg     config.Config
	logger  = zap.NewNop()
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "bstats",
	Short: "Battle log statistics tool",
	Long: `Parse battle replay exports and compute per-combatant damage, healing,
status and boost statistics plus per-player chat and team composition counts.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	logger.Sync() //nolint:errcheck
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// v holds defaults, the config file, BSTATS_ env vars and bound flags.
var v = config.New()

func init() {
	rootCmd.PersistentPreRunE = setup

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "path to a YAML config file")
	pf.String("db", "bstats.db", "path to SQLite database")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "console", "log format: json or console")
	pf.String("out", "", "directory for combatants.csv and players.csv")
	pf.IntSlice("player-tokens", parser.DefaultPlayerTokens[:], "zero-based file-name token positions of the two player ids")
	pf.String("format", "auto", "input format: auto, html or log")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(leagueCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(dropCmd)
}

// rootFlagKeys maps config keys onto the persistent flags that override them.
var rootFlagKeys = map[string]string{
	"storage.path":         "db",
	"logging.level":        "log-level",
	"logging.format":       "log-format",
	"output.dir":           "out",
	"parser.player_tokens": "player-tokens",
	"parser.format":        "format",
}

func bindRootFlags() error {
	pf := rootCmd.PersistentFlags()
	for key, flag := range rootFlagKeys {
		if err := v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			return fmt.Errorf("bind --%s: %w", flag, err)
		}
	}
	return nil
}

// setup loads .env, the config file and flags into cfg and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	if err := bindRootFlags(); err != nil {
		return err
	}
	if cmd.Flags().Lookup("workers") != nil {
		if err := bindBatchFlags(cmd); err != nil {
			return err
		}
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	c, err := config.LoadFromViper(v)
	if err != nil {
		return err
	}
	cfg = c
	dbPath = cfg.Storage.Path

	l, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	logger = l.With(zap.String("cmd", cmd.Name()))
	return nil
}

func parserOptions() parser.Options {
	return parser.Options{
		PlayerTokens: cfg.Parser.Tokens(),
		Format:       cfg.Parser.Format,
	}
}

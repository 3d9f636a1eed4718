package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/idelchi/mrdu/internal/tree"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Settings is the resolved configuration of a run.
type Settings struct {
	// Path is the directory to analyze.
	Path string
	// MaxDepth is the number of levels shown below the root.
	MaxDepth int
	// MinPercent is the share of its parent an entry must exceed to be shown.
	MinPercent float64
	// Apparent selects allocated size on disk instead of logical length.
	Apparent bool
	// Precision is the number of decimal places of percentages.
	Precision int
	// Output represents output format (tree or json).
	Output string
	// Color is the color mode (auto, always or never).
	Color string
	// Binary selects IEC units for sizes.
	Binary bool
	// Threads bounds the number of concurrent workers (0 = number of CPUs).
	Threads int
	// Debug indicates whether debug output is enabled.
	Debug bool
	// ConfigFile is the configuration file that was read, if any.
	ConfigFile string
}

const (
	envPrefix    = "MRDU"
	appName      = "mrdu"
	maxPrecision = 10
)

//nolint:gochecknoglobals // Config constants
var (
	allowedOutputs = []string{"tree", "json"}
	allowedColors  = []string{"auto", "always", "never"}
)

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.Command().Execute()
}

// Command builds the root command. Each call uses its own configuration
// registry, so commands are independent of each other.
func (c CLI) Command() *cobra.Command {
	v := viper.New()

	var configFile string

	cmd := &cobra.Command{
		Use:   appName + " [flags] [path]",
		Short: "A simple command line disk analysis tool.",
		Long: heredoc.Doc(`
			mrdu shows how the disk space of a directory is distributed as a tree.

			Every entry is shown with its share of the parent directory, its size and
			its name. Entries below --min-percent of their parent are hidden, and the
			tree is cut after --max-depth levels. Directories on another filesystem
			than the analyzed one are not counted, and unreadable entries are skipped.

			Settings are read, in increasing priority, from the defaults, the config
			file ($XDG_CONFIG_HOME/mrdu/config.toml or --config), MRDU_* environment
			variables (e.g. MRDU_MAX_DEPTH) and the flags.
		`),
		Example: heredoc.Doc(`
			mrdu
			mrdu -d 1 /var
			mrdu --apparent --min-percent 5 ~/Downloads
			mrdu -o json . > usage.json
		`),
		Version:       c.version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := readConfig(v, configFile); err != nil {
				return err
			}

			settings, err := loadSettings(v, args)
			if err != nil {
				return err
			}

			return logic(cmd, settings)
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false

	flags.IntP("max-depth", "d", tree.DefaultMaxDepth, "Maximum recursion depth in directory")
	flags.Float64P("min-percent", "p", tree.DefaultMinPercent,
		"Threshold (0-100%) an entry's share of its parent must exceed to be shown")
	flags.BoolP("apparent", "a", false, "Report allocated size on disk instead of logical length")
	flags.IntP("precision", "n", 2, "Number of decimal places of percentages") //nolint:mnd // Default precision
	flags.StringP("output", "o", "tree", "Output format: tree or json")
	flags.String("color", "auto", "Colorize output: auto, always or never")
	flags.Bool("binary", false, "Use binary units (KiB, MiB) for sizes")
	flags.IntP("threads", "t", 0, "Number of concurrent workers (0=number of CPUs)")
	flags.Bool("debug", false, "Enable debug output")
	flags.StringVar(&configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/mrdu/config.toml)")

	flags.VisitAll(func(flag *pflag.Flag) {
		if flag.Name == "config" {
			return
		}

		//nolint:errcheck // Flag is known to exist
		v.BindPFlag(configKey(flag.Name), flag)
	})

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd
}

// configKey maps a flag name to its key in config files and the environment.
func configKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

// readConfig loads the config file. A missing default config file is not an error,
// but a missing explicitly requested one is.
func readConfig(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil //nolint:nilerr // No config directory means no config file
		}

		v.AddConfigPath(filepath.Join(dir, appName))
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("reading config file: %w", err)
	}

	return nil
}

// loadSettings resolves and validates the settings of a run.
func loadSettings(v *viper.Viper, args []string) (Settings, error) {
	settings := Settings{
		MaxDepth:   v.GetInt(configKey("max-depth")),
		MinPercent: v.GetFloat64(configKey("min-percent")),
		Apparent:   v.GetBool("apparent"),
		Precision:  v.GetInt("precision"),
		Output:     strings.ToLower(v.GetString("output")),
		Color:      strings.ToLower(v.GetString("color")),
		Binary:     v.GetBool("binary"),
		Threads:    v.GetInt("threads"),
		Debug:      v.GetBool("debug"),
		ConfigFile: v.ConfigFileUsed(),
	}

	if len(args) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return settings, fmt.Errorf("getting current directory: %w", err)
		}

		settings.Path = cwd
	} else {
		settings.Path = args[0]
	}

	switch {
	case settings.MaxDepth < 0:
		return settings, errors.New("max-depth cannot be negative")
	case settings.MinPercent < 0 || settings.MinPercent > 100:
		return settings, fmt.Errorf("invalid min-percent %v: must be between 0 and 100", settings.MinPercent)
	case settings.Precision < 0 || settings.Precision > maxPrecision:
		return settings, fmt.Errorf("invalid precision %d: must be between 0 and %d", settings.Precision, maxPrecision)
	case settings.Threads < 0:
		return settings, errors.New("threads cannot be negative")
	case !slices.Contains(allowedOutputs, settings.Output):
		return settings, fmt.Errorf("invalid output format %q: must be one of %v", settings.Output, allowedOutputs)
	case !slices.Contains(allowedColors, settings.Color):
		return settings, fmt.Errorf("invalid color mode %q: must be one of %v", settings.Color, allowedColors)
	}

	return settings, nil
}

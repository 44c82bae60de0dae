package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/nounclass/internal/model"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.1.0"

const envPrefix = "NOUNCLASS"

var (
	cfgFile   string
	verbosity int
	logJSON   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nounclass",
	Short: "nounclass - informational vs. eventive readings of nouns in a corpus",
	Long: `nounclass tags a small corpus of public-domain texts and sorts the
nouns it finds into informational readings ("the message that he was late")
and eventive readings ("a three-minute message", "the message lasted three
minutes").

Every noun that matched at least one pattern is reported in one of five
classes: exclusively informational, primarily informational, equal,
primarily eventive and exclusively eventive.

The patterns are local and rule-based. The output is a heuristic
survey, not a semantic annotation.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of nounclass.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nounclass %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.nounclass/config.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "verbose output (-v progress, -vv debug)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := setupViper(viper.GetViper(), cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		return
	}
	if used := viper.ConfigFileUsed(); used != "" && verbosity > 0 {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", used)
	}
}

// setupViper registers the built-in defaults, the NOUNCLASS_* environment
// and the config file on v. A missing default config file is not an error.
func setupViper(v *viper.Viper, file string) error {
	if err := registerDefaults(v); err != nil {
		return err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "find home directory")
		}
		v.AddConfigPath(filepath.Join(home, ".nounclass"))
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "read config file")
	}
	return nil
}

// registerDefaults loads DefaultConfig into v's default layer, so that every
// key is known to viper and can be overridden from the environment
func registerDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return errors.Wrap(err, "marshal defaults")
	}

	var defaults map[string]any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&defaults); err != nil {
		return errors.Wrap(err, "decode defaults")
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	return nil
}

// loadConfig decodes the effective configuration from v
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	// The default layer carries the built-in sources; a configured list
	// replaces them rather than merging entry by entry.
	cfg.Sources = nil
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

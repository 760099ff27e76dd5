package cmd

import (
	"fmt"
	"os"

	"mysql-ops/internal/config"
	"mysql-ops/internal/logging"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	cfgFile string
	verbose bool
	quiet   bool
	noColor bool

	// Connection overrides; empty means "use env/config/default"
	flagHost     string
	flagPort     int
	flagUser     string
	flagPassword string
	flagDatabase string

	promptPassword bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mysql-ops",
	Short: "Operational tools for a MySQL environment",
	Long: `mysql-ops bundles three small operational tools for a MySQL environment:

  backup   Dump all user databases to timestamped files via mysqldump
  deploy   Run a SQL script against the target database and record it
           in the deployment history
  history  Show the deployment history
  ping     Connectivity smoke test

Connection settings come from environment variables (MYSQL_HOST,
MYSQL_PORT, MYSQL_USER, MYSQL_PASSWORD, MYSQL_DATABASE, BACKUP_DIR),
an optional --config YAML file, or flags, in increasing priority.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable color output")

	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "database host")
	rootCmd.PersistentFlags().IntVar(&flagPort, "port", 0, "database port")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "database username")
	rootCmd.PersistentFlags().StringVar(&flagPassword, "password", "", "database password")
	rootCmd.PersistentFlags().StringVar(&flagDatabase, "database", "", "target database name")
	rootCmd.PersistentFlags().BoolVar(&promptPassword, "prompt-password", false, "read the database password from the terminal")
}

// loadConfig builds the process configuration and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if verbose && quiet {
		return nil, fmt.Errorf("--verbose and --quiet flags are mutually exclusive")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if flagHost != "" {
		cfg.Database.Host = flagHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Database.Port = flagPort
	}
	if flagUser != "" {
		cfg.Database.Username = flagUser
	}
	if flagPassword != "" {
		cfg.Database.Password = flagPassword
	}
	if flagDatabase != "" {
		cfg.Database.Database = flagDatabase
	}

	if promptPassword {
		password, err := readPassword()
		if err != nil {
			return nil, err
		}
		cfg.Database.Password = password
	}

	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// readPassword reads a password from the terminal without echo
func readPassword() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("--prompt-password requires an interactive terminal")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(password), nil
}

// newLogger creates a logger honoring --verbose/--quiet, copying every
// line into the tool's append-mode log file.
func newLogger(logFile string) (*logging.Logger, error) {
	level := logging.LogLevelNormal
	if verbose {
		level = logging.LogLevelVerbose
	}
	if quiet {
		level = logging.LogLevelQuiet
	}

	return logging.NewLogger(logging.Config{
		Level:   level,
		Output:  os.Stdout,
		Format:  "text",
		LogFile: logFile,
	})
}

// colorEnabled reports whether colorized output should be used
func colorEnabled() bool {
	if noColor {
		return false
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// SetVersionInfo sets the version information from build flags
func SetVersionInfo(v, bt, gc string) {
	version = v
	buildTime = bt
	gitCommit = gc
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mysql-ops version %s\n", version)
			fmt.Printf("Built: %s\n", buildTime)
			fmt.Printf("Commit: %s\n", gitCommit)
		},
	})
}

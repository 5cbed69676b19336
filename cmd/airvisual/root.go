package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/giljurha/Airvisual/internal/config"
)

const serviceName = "airvisual"

var (
	cfg *config.Config
	log zerolog.Logger

	envFile   string
	latFlag   float64
	lonFlag   float64
	localeArg string
)

var rootCmd = &cobra.Command{
	Use:   "airvisual",
	Short: "Air quality for where you are",
	Long: `Shows the US AQI reported by IQAir for your current location,
together with the street and region it resolves to.

Examples:
  airvisual show --lat 37.5665 --lon 126.978
  airvisual serve --port 8080 --locale ko`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg = config.Load(envFile)
		applyFlags(cmd, cfg)
		log = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
		return cfg.Validate()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().Float64Var(&latFlag, "lat", 0, "fixed GPS latitude (overrides GPS_LAT)")
	rootCmd.PersistentFlags().Float64Var(&lonFlag, "lon", 0, "fixed GPS longitude (overrides GPS_LON)")
	rootCmd.PersistentFlags().StringVar(&localeArg, "locale", "", "notice language, en or ko (overrides LOCALE)")
}

// applyFlags overrides c with the flags the user set. A GPS fix needs both
// --lat and --lon.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("lat") && flags.Changed("lon") {
		c.GPS = &config.Fix{Lat: latFlag, Lon: lonFlag}
	}
	if flags.Changed("locale") && localeArg != "" {
		c.Locale = localeArg
	}
	if flags.Changed("port") {
		c.Port = portFlag
	}
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()
}

// Package commands implements the CLI commands for malthemes.
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "malthemes",
	Short: "Collect anime opening/ending theme songs for a MyAnimeList user",
	Long: `Malthemes walks a user's MyAnimeList anime list and collects every
opening and ending theme song into one JSON document, ready to be
served to the playlist front-end.

The list page loads its rows through infinite scroll, so scraping
drives a real headless Chrome; theme songs are parsed out of each
anime's detail page. With a MAL API client id the same data can be
pulled from the official API instead.

Examples:
  # Scrape a user's list through headless Chrome
  malthemes scrape -u mik2003 -o songs.json

  # Use the official API (needs MAL_CLIENT_ID in env or .env)
  malthemes scrape -u mik2003 --source api -o songs.json

  # Look up YouTube links for every theme song
  malthemes scrape -u mik2003 --youtube -o songs.json`,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.malthemes.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().Bool("log-json", false, "log as JSON")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
}

func initConfig() {
	// Credentials may live in a .env next to the binary.
	_ = godotenv.Load()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".malthemes")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("MALTHEMES")
	viper.AutomaticEnv()

	// API credentials are conventionally set without the prefix.
	_ = viper.BindEnv("client_id", "MAL_CLIENT_ID")
	_ = viper.BindEnv("spotify_client_id", "SPOTIFY_CLIENT_ID")
	_ = viper.BindEnv("spotify_client_secret", "SPOTIFY_CLIENT_SECRET")

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

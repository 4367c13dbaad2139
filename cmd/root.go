package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tverrfjellet/garmindump/gc"
)

var (
	cfgFile  string
	tokenDir string
)

var rootCmd = &cobra.Command{
	Use:   "garmindump",
	Short: "A tool to dump Garmin Connect data",
	Long: `Garmindump is a CLI tool to download and back up Garmin Connect activities and health data.

It provides an interactive terminal interface with structured logging, and
reuses saved session tokens so you rarely have to log in twice.`,
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download activity files from Garmin Connect",
	Long:  `Download original activity files (FIT inside a zip, or TCX for manual entries) for a date range.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		since, _ := cmd.Flags().GetString("since")
		until, _ := cmd.Flags().GetString("until")
		jsonMode, _ := cmd.Flags().GetBool("json")

		config := gc.DownloadConfig{
			Email:    getConfigValue("", "email"),
			Password: getConfigValue("", "password"),
			TokenDir: getConfigValue(tokenDir, "token_dir"),
			UntilStr: until,
			SinceStr: since,
			SaveDir:  viper.GetString("save_dir"),
			JSONMode: jsonMode,
		}

		return gc.Download(config)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the daily summary for a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		jsonMode, _ := cmd.Flags().GetBool("json")

		config := gc.StatsConfig{
			Email:    getConfigValue("", "email"),
			Password: getConfigValue("", "password"),
			TokenDir: getConfigValue(tokenDir, "token_dir"),
			DateStr:  date,
			JSONMode: jsonMode,
		}

		return gc.Stats(config)
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload FILE...",
	Short: "Upload activity files to Garmin Connect",
	Long:  `Upload local .fit, .gpx, or .tcx activity files. Files Garmin already knows count as success.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")

		config := gc.UploadConfig{
			Email:    getConfigValue("", "email"),
			Password: getConfigValue("", "password"),
			TokenDir: getConfigValue(tokenDir, "token_dir"),
			Paths:    args,
			JSONMode: jsonMode,
		}

		return gc.Upload(config)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save session tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")

		config := gc.LoginConfig{
			Email:    getConfigValue("", "email"),
			Password: getConfigValue("", "password"),
			TokenDir: getConfigValue(tokenDir, "token_dir"),
			JSONMode: jsonMode,
		}

		return gc.Login(config)
	},
}

// getConfigValue returns the flag value if non-empty, otherwise returns the viper config value
func getConfigValue(flagValue, viperKey string) string {
	if flagValue != "" {
		return flagValue
	}
	return viper.GetString(viperKey)
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Viper defaults
	viper.SetDefault("save_dir", "~/.garmindump/activities")
	viper.SetDefault("token_dir", "~/.garmindump/tokens")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.garmindump/garmindump.yaml)")
	rootCmd.PersistentFlags().StringVar(&tokenDir, "token-dir", "", "Directory for saved session tokens (default: ~/.garmindump/tokens)")
	rootCmd.PersistentFlags().String("save_dir", "", "Directory to save downloaded files (default: ~/.garmindump/activities)")

	downloadCmd.Flags().String("since", "4w", "Download activities since this date (e.g., '2023-12-01', '30d', '4w')")
	downloadCmd.Flags().String("until", "", "Download activities until this date (optional)")
	downloadCmd.Flags().Bool("json", false, "Output structured JSON logs instead of interactive mode")

	statsCmd.Flags().String("date", "", "Date to summarize (YYYY-MM-DD, default: today)")
	statsCmd.Flags().Bool("json", false, "Output the raw summary as JSON")

	uploadCmd.Flags().Bool("json", false, "Output structured JSON results")

	loginCmd.Flags().Bool("json", false, "Output structured JSON logs instead of interactive mode")

	// Bind environment variables
	viper.BindEnv("email", "GARMINDUMP_EMAIL")
	viper.BindEnv("password", "GARMINDUMP_PASSWORD")
	viper.BindEnv("token_dir", "GARMINDUMP_TOKEN_DIR")
	viper.BindEnv("save_dir", "GARMINDUMP_SAVE_DIR")

	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(loginCmd)
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in ~/.garmindump/ with name "garmindump" (without extension).
		viper.AddConfigPath(filepath.Join(home, ".garmindump"))
		viper.SetConfigName("garmindump")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in silently (logging is via LOG_LEVEL env var)
	viper.ReadInConfig()
}

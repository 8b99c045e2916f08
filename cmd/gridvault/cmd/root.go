package cmd

import (
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/benchwise/gridvault/config"
	"github.com/benchwise/gridvault/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gridvault",
	Short: "gridvault versions, diffs and merges tabular documents",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var initOnce sync.Once

//nolint:gochecknoinits
func init() {
	cobra.OnInitialize(func() {
		initOnce.Do(initConfig)
	})
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.gridvault.yaml)")
}

func loadConfig() *config.Config {
	initOnce.Do(initConfig)
	return config.NewConfig()
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".gridvault")
		viper.AddConfigPath(getHomeDir())
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("GRIDVAULT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // support nested config
	viper.AutomaticEnv()                                   // read in environment variables that match

	if err := viper.ReadInConfig(); err == nil {
		logging.Default().
			WithField("file", viper.ConfigFileUsed()).
			Info("loaded configuration")
	}
}

// getHomeDir find and return the home directory
func getHomeDir() string {
	home, err := homedir.Dir()
	if err != nil {
		fmt.Println("Get home directory -", err)
		os.Exit(1)
	}
	return path.Clean(home)
}

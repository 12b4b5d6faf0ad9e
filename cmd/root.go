/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"log/slog"
	"os"

	"github.com/fieldroute/fieldd/params"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var optVerbosity int
var optDatadir string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fieldd",
	Short: "Field employee route tracking daemon",
	Long: `fieldd ingests GPS reports from field devices, correlates them with
attendance sessions, and serves route, travel-time, and work/rest
analytics over HTTP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pFlags := rootCmd.PersistentFlags()
	pFlags.IntVarP(&optVerbosity, "verbosity", "v", 0, "Log level (slog; 0=info, -4=debug, 4=warn)")
	pFlags.StringVar(&optDatadir, "datadir", params.DefaultDatadirRoot, "Data directory")

	_ = viper.BindPFlag("datadir", pFlags.Lookup("datadir"))
	_ = viper.BindPFlag("verbosity", pFlags.Lookup("verbosity"))
}

// initConfig reads in ENV variables; flags with matching FIELDD_*
// variables pick their values up automatically.
func initConfig() {
	viper.SetEnvPrefix("FIELDD")
	viper.AutomaticEnv()

	if viper.IsSet("datadir") {
		optDatadir = viper.GetString("datadir")
	}
	if viper.IsSet("verbosity") {
		optVerbosity = viper.GetInt("verbosity")
	}
}

func setDefaultSlog(cmd *cobra.Command, args []string) {
	slog.SetLogLoggerLevel(slog.Level(optVerbosity))
}

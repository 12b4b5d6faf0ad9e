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
	"log"
	"log/slog"

	"github.com/fieldroute/fieldd/daemon/webd"
	"github.com/fieldroute/fieldd/params"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var optHTTPAddr string
var optRouting = params.DefaultRoutingConfig()

// routingFlagSet exposes the directions provider knobs. The API key
// stays env-only (FIELDD_ROUTING_API_KEY) so it never lands in shell
// history.
func routingFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("routing", pflag.ContinueOnError)
	fs.StringVar(&optRouting.BaseURL, "routing-url", optRouting.BaseURL, "Directions endpoint")
	fs.DurationVar(&optRouting.Timeout, "routing-timeout", optRouting.Timeout, "Directions call timeout")
	return fs
}

// webdCmd represents the serve command
var webdCmd = &cobra.Command{
	Use:   "webd",
	Short: "Start the webserver",
	Long: `Serves report ingest, session lifecycle, and route analytics over HTTP.

Set FIELDD_TOKEN to require a token on mutating endpoints, and
FIELDD_ROUTING_API_KEY to enable routed distance and drive-time
estimates.`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		slog.Info("webd.Run")
		server, err := webd.NewWebDaemon(&params.WebDaemonConfig{
			DataDir: optDatadir,
			ListenerConfig: params.ListenerConfig{
				Address: optHTTPAddr,
				Network: "tcp",
			},
			Routing: optRouting,
		}, nil)
		if err != nil {
			log.Fatalln(err)
		}

		if err := server.Run(); err != nil {
			log.Fatalln(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(webdCmd)

	defaults := params.DefaultWebDaemonConfig()

	pFlags := webdCmd.PersistentFlags()
	pFlags.StringVar(&optHTTPAddr, "address", defaults.Address, "HTTP address to listen on")
	pFlags.AddFlagSet(routingFlagSet())
}

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
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/fieldroute/fieldd/api"
	"github.com/fieldroute/fieldd/common"
	"github.com/fieldroute/fieldd/routing"
	"github.com/fieldroute/fieldd/state"
	"github.com/fieldroute/fieldd/stream"
	"github.com/fieldroute/fieldd/types/locpoint"
	"github.com/spf13/cobra"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import location reports from stdin",
	Long: `Reports are decoded as JSON lines from stdin and ingested through the
full validate/dedupe/resolve path, so re-importing a dump is safe:
already-stored reports count as duplicates.

Mixed employees are supported; per-employee ordering follows input
order.

Example:

  zcat reports.ndjson.gz | fieldd import --datadir /var/lib/fieldd
`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)

		store, err := state.NewBoltStore(optDatadir)
		if err != nil {
			slog.Error("Failed to open store", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		tracker := api.NewTracker(store, routing.NewDirectionsClient(nil))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			sig := <-common.Interrupted()
			slog.Warn("Received signal", "signal", sig)
			cancel()
		}()

		meter := stream.NewTickMeter(10 * time.Second)
		var ok, dup, bad int
		stream.Sink(ctx, func(r locpoint.Report) {
			meter.Mark()
			switch res := tracker.Ingest(ctx, &r); res.Status {
			case api.IngestOK:
				ok++
			case api.IngestDuplicate:
				dup++
			default:
				bad++
			}
		}, stream.NDJSON[locpoint.Report](ctx, os.Stdin))
		meter.Stop()

		slog.Info("Import done", "ok", ok, "duplicate", dup, "error", bad)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

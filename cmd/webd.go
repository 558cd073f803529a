/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

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
	"github.com/rotblauer/gpxnap/common"
	"github.com/rotblauer/gpxnap/daemon/webd"
	"github.com/rotblauer/gpxnap/params"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log"
	"log/slog"
)

// webdCmd represents the serve command
var webdCmd = &cobra.Command{
	Use:   "webd",
	Short: "Start the webserver",
	Long: `Serves track simplification over HTTP.

  GET  /ping              healthcheck
  GET  /status            uptime, request and cache counts, config
  POST /simplify          GPX, CSV (text/csv) or NDJSON (application/x-ndjson) body;
                          returns GPX, or ?format=csv|ndjson
  POST /simplify/report   returns the run and stay summaries as JSON

When --token is set, POST requests need "Authorization: Bearer <token>"
or ?api_token=<token>.
`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		slog.Info("webd.Run")

		simplify, err := loadSimplifyConfig(viper.GetViper())
		if err != nil {
			log.Fatalln(err)
		}
		config := params.DefaultWebDaemonConfig()
		config.Simplify = simplify
		config.Address = viper.GetString("webd.address")
		config.CacheTTL = viper.GetDuration("webd.cache_ttl")
		config.MaxBodyBytes = viper.GetInt64("webd.max_body_bytes")
		config.Token = viper.GetString("webd.token")

		server, err := webd.NewWebDaemon(config)
		if err != nil {
			log.Fatalln(err)
		}

		ctx, stop := common.InterruptedContext(context.Background())
		defer stop()
		if err := server.Run(ctx); err != nil {
			log.Fatalln(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(webdCmd)

	defaults := params.DefaultWebDaemonConfig()

	pFlags := webdCmd.PersistentFlags()
	pFlags.String("address", defaults.Address, "HTTP address to listen on")
	pFlags.Duration("cache-ttl", defaults.CacheTTL, "How long identical requests are served from cache; 0 disables")
	pFlags.Int64("max-body-bytes", defaults.MaxBodyBytes, "Largest accepted request body")
	pFlags.String("token", "", "Require this token of POST requests")

	bindFlags(pFlags, map[string]string{
		"webd.address":        "address",
		"webd.cache_ttl":      "cache-ttl",
		"webd.max_body_bytes": "max-body-bytes",
		"webd.token":          "token",
	})
}

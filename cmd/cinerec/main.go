// Copyright 2026 cinerec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/cinerec/cinerec/base/log"
	"github.com/cinerec/cinerec/base/progress"
	"github.com/cinerec/cinerec/cmd/version"
	"github.com/cinerec/cinerec/config"
	"github.com/cinerec/cinerec/engine"
	"github.com/cinerec/cinerec/server"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCommand = &cobra.Command{
	Use:   "cinerec",
	Short: "Hybrid movie recommender combining content similarity and collaborative filtering.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)
	},
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			fmt.Println(version.BuildInfo())
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.Flags().BoolP("version", "v", false, "cinerec version")
	rootCommand.AddCommand(serveCommand, similarCommand, recommendCommand, shellCommand, evaluateCommand)
}

func main() {
	defer log.CloseLogger()
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}

// loadConfig loads the configuration named by the --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	log.Logger().Info("load config", zap.String("config", configPath))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, errors.Annotate(err, "failed to load config")
	}
	return cfg, nil
}

// buildEngine loads the data store and builds both recommenders.
func buildEngine(ctx context.Context, cfg *config.Config) (*engine.Engine, error) {
	db, err := engine.OpenDatabase(cfg)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Logger().Warn("failed to close data store", zap.Error(err))
		}
	}()
	return engine.Build(ctx, cfg, db)
}

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Build the recommenders and start the RESTful API server.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		tracer := progress.NewTracer("cinerec")
		buildCtx, span := tracer.Start(ctx, "startup", 1)
		e, err := buildEngine(buildCtx, cfg)
		if err != nil {
			span.Fail(err)
			return errors.Trace(err)
		}
		span.End()
		s := server.NewRestServer(e, tracer)
		if err = s.Serve(ctx); err != nil {
			return errors.Trace(err)
		}
		log.Logger().Info("stop cinerec server successfully")
		return nil
	},
}

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"honours/internal/build"
	buildmode "honours/internal/domain/build"
	"honours/internal/serve"
	"strings"
)

var offline bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the optimised site into dist",
	Long: `Runs the production pipeline:

  clean, download-data
  scripts, styles, templates
  minify-js, minify-css, compress-images, copy-misc-files
  finalise-html

Any compile error fails the build.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runBuild(cmd)
		return err
	},
}

var serveDistCmd = &cobra.Command{
	Use:   "serve:dist",
	Short: "Build, then serve dist without live reload",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := runBuild(cmd); err != nil {
			return err
		}
		return serve.ServeDist(cmd.Context(), cfg.Build.DistDir, cfg.Serve.DistAddr, logger)
	},
}

var taskCmd = &cobra.Command{
	Use:   "task [name]",
	Short: "Run a single build step",
	Long: `Runs one step on its own. In development mode compile errors are logged
and the step succeeds.

Steps: ` + strings.Join(build.TaskNames(), ", "),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("mode")
		mode, err := buildmode.ParseMode(name)
		if err != nil {
			return err
		}
		steps := build.NewSteps(cfg, mode, logger)
		steps.Offline = offline
		return build.RunTask(cmd.Context(), steps, args[0])
	},
}

func init() {
	for _, c := range []*cobra.Command{buildCmd, serveDistCmd, taskCmd} {
		c.Flags().BoolVar(&offline, "offline", false, "reuse the existing data file instead of downloading it")
	}
	taskCmd.Flags().String("mode", string(buildmode.Production), "development or production")
}

func runBuild(cmd *cobra.Command) (*build.Result, error) {
	b := &build.Builder{Cfg: cfg, Log: logger, Offline: offline}
	res, err := b.Run(cmd.Context())
	if err != nil {
		return nil, err
	}
	for _, f := range res.Diff.Added {
		logger.Debug("added", zap.String("file", f))
	}
	for _, f := range res.Diff.Changed {
		logger.Debug("changed", zap.String("file", f))
	}
	for _, f := range res.Diff.Removed {
		logger.Debug("removed", zap.String("file", f))
	}
	return res, nil
}

package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"honours/internal/deploy"
)

var deployCmd = &cobra.Command{
	Use:   "deploy [target]",
	Short: "Copy dist to the interactive server's web root",
	Long: `Copies dist into <dest_prefix>/<target>. The target comes from the
argument, then DEPLOY_TARGET, then deploy.target in site.yaml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dc := cfg.Deploy
		if len(args) == 1 {
			dc.Target = args[0]
		}
		d := &deploy.Deployer{Cfg: dc, Log: logger}
		url, err := d.Deploy(cfg.Build.DistDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deployed to %s\n", url)
		return nil
	},
}

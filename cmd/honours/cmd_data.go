package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"honours/internal/fetch"
	"honours/internal/normalize"
	"strings"
)

var downloadDataCmd = &cobra.Command{
	Use:   "download-data",
	Short: "Download the spreadsheet and write the data file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := fetch.New(cfg.Data, logger)
		doc, err := f.Download(cmd.Context(), cfg.Build.DataFile)
		if err != nil {
			return err
		}
		logger.Info("data written",
			zap.String("path", cfg.Build.DataFile),
			zap.Int("orders", len(doc.Orders)),
			zap.Int("profiles", len(doc.Profiles)),
		)
		return nil
	},
}

var (
	normalizeIn     string
	normalizeOut    string
	normalizeTables string
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Clean the raw honours list into honours.json and types.json",
	Long: `Splits every name into forenames, surname and suffixes, infers gender
and collects the honour types. One bad record aborts the whole run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables := normalize.DefaultTables()
		if normalizeTables != "" {
			t, err := normalize.LoadTables(normalizeTables)
			if err != nil {
				return err
			}
			tables = t
		}

		records, err := normalize.ReadRecords(normalizeIn)
		if err != nil {
			return err
		}
		res, err := normalize.New(tables).Normalize(records)
		if err != nil {
			return err
		}
		if err := normalize.WriteOutputs(normalizeOut, res); err != nil {
			return err
		}

		logger.Info("normalized",
			zap.Int("honours", len(res.Honours)),
			zap.Int("types", len(res.Types)),
			zap.String("out", normalizeOut),
		)
		if len(res.FoundSuffixes) > 0 {
			logger.Info("suffixes found", zap.String("suffixes", strings.Join(res.FoundSuffixes, " ")))
		}
		return nil
	},
}

func init() {
	normalizeCmd.Flags().StringVar(&normalizeIn, "in", "original-data.json", "raw list, a JSON array of rows")
	normalizeCmd.Flags().StringVar(&normalizeOut, "out", "data", "output directory")
	normalizeCmd.Flags().StringVar(&normalizeTables, "tables", "", "YAML file of name and gender overrides (default: built-in tables)")
}

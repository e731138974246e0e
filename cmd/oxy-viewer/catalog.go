package main

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/panel"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// catalogEntry is one panel control as printed by the catalog command.
type catalogEntry struct {
	Key   int    `yaml:"key"`
	Label string `yaml:"label"`
	Asset string `yaml:"asset"`
}

// catalogReport is the document printed by the catalog command.
type catalogReport struct {
	Settings config.Settings `yaml:"settings"`
	Embed    struct {
		Model  string `yaml:"model"`
		HideUI bool   `yaml:"hide_ui"`
	} `yaml:"embed"`
	Controls []catalogEntry `yaml:"controls"`
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the resolved settings and catalog as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings, err := resolveSettings(cmd)
		if err != nil {
			return err
		}
		embed, _ := cmd.Flags().GetString("embed")

		report := newCatalogReport(settings, config.ResolveQuery(embed, settings.DefaultAsset))
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().String("embed", "", "Embedding parameters to resolve, e.g. \"model=chair.glb\"")
}

func newCatalogReport(settings config.Settings, cfg config.ViewerConfig) catalogReport {
	report := catalogReport{Settings: settings}
	report.Embed.Model = cfg.RequestedAsset()
	report.Embed.HideUI = cfg.UIHidden()
	for i, c := range panel.NewPanel(settings.Catalog).Controls() {
		report.Controls = append(report.Controls, catalogEntry{Key: i + 1, Label: c.Label, Asset: c.Asset})
	}
	return report
}

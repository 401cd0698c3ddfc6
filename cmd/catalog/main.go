package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/uhyunpark/swapguard/pkg/app/core"
	"github.com/uhyunpark/swapguard/pkg/app/core/asset"
	"github.com/uhyunpark/swapguard/pkg/util"
)

const (
	assetsFile   = "assets.json"
	networksFile = "networks.json"
)

// Command line flags
var (
	outputDir   string
	catalogFile string
	verbose     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "catalog",
		Short:   "Asset catalog tooling",
		Version: "1.0.0",
	}

	rootCmd.AddCommand(buildJSONCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildJSONCmd() *cobra.Command {
	jsonCmd := &cobra.Command{
		Use:   "json",
		Short: "Generate assets.json and networks.json for clients",
		RunE:  runJSON,
	}

	jsonCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: next to the executable)")
	jsonCmd.Flags().StringVarP(&catalogFile, "catalog", "c", "", "Source assets.json (default: built-in table)")
	jsonCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	return jsonCmd
}

func runJSON(cmd *cobra.Command, args []string) error {
	logger, err := util.NewLogger(verbose)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	catalog, err := core.LoadCatalog(catalogFile)
	if err != nil {
		return err
	}

	dir := outputDir
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locate executable: %w", err)
		}
		dir = filepath.Dir(exe)
	}

	return writeJSON(dir, catalog, logger.Sugar())
}

// writeJSON writes the catalog's client exports into dir.
func writeJSON(dir string, catalog *asset.Catalog, log *zap.SugaredLogger) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := writeIndented(filepath.Join(dir, assetsFile), catalog.Tokens(), log); err != nil {
		return err
	}
	return writeIndented(filepath.Join(dir, networksFile), asset.NetworkInfos(), log)
}

func writeIndented(path string, v interface{}, log *zap.SugaredLogger) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	log.Infow("Writing", "path", path, "bytes", len(data))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

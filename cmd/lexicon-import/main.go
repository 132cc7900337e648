// Command lexicon-import converts an xlsx or csv lexicon export into the JSON file read by the bot.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/importer"
)

func main() {
	cfg := importer.DefaultImportConfig()

	in := flag.String("in", "", "path to the .xlsx or .csv export")
	out := flag.String("out", "assets/lexique.json", "path of the JSON file to write, - for stdout")
	flag.StringVar(&cfg.SheetName, "sheet", cfg.SheetName, "sheet to import (default: first sheet)")
	flag.StringVar(&cfg.FrancaisColumn, "fr", cfg.FrancaisColumn, "column with the French word")
	flag.StringVar(&cfg.ShimaoreColumn, "sh", cfg.ShimaoreColumn, "column with the Shimaoré translation")
	flag.StringVar(&cfg.FrequenceColumn, "freq", cfg.FrequenceColumn, "column with the frequency rank, empty for row order")
	flag.IntVar(&cfg.StartRow, "start-row", cfg.StartRow, "first row to import (1-based)")
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	cfg.FilePath = *in

	result, err := importer.ImportWords(cfg)
	if err != nil {
		log.Fatal("import failed", zap.String("file", *in), zap.Error(err))
	}
	for _, e := range result.Errors {
		log.Warn("row rejected", zap.String("reason", e))
	}

	w := os.Stdout
	if *out != "-" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal("failed to create output", zap.String("file", *out), zap.Error(err))
		}
		defer f.Close()
		w = f
	}

	if err := importer.WriteJSON(w, result.Words); err != nil {
		log.Fatal("failed to write lexicon", zap.Error(err))
	}

	log.Info("lexicon imported",
		zap.Int("words", len(result.Words)),
		zap.Int("processed", result.TotalProcessed),
		zap.Int("skipped", result.Skipped),
		zap.Int("duplicates", result.Duplicates),
	)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ThomasTsao0704/stock-analysis-app/internal/app"
	"github.com/ThomasTsao0704/stock-analysis-app/internal/exporter"
	"github.com/ThomasTsao0704/stock-analysis-app/internal/services"
	"github.com/ThomasTsao0704/stock-analysis-app/pkg/contracts/domain"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	locator := flag.String("locator", "", "source file locator: share URL or bare file ID (required)")
	date := flag.String("date", "", "trade date YYYYMMDD (defaults to the latest date in the file)")
	window := flag.Int("window", 0, "trailing window for the volume baseline (0 = configured default)")
	topN := flag.Int("top", 0, "list length for the ranked screens (0 = configured default)")
	limitUp := flag.Float64("limit-up", 0, "limit-up threshold in percent (0 = configured default)")
	volumeMultiple := flag.Float64("volume-multiple", 0, "minimum volume ratio (0 = configured default)")
	refresh := flag.Bool("refresh", false, "bypass the download cache")
	outDir := flag.String("out", "", "directory for CSV exports (empty = print only)")
	flag.Parse()

	if *locator == "" {
		fmt.Fprintln(os.Stderr, "usage: screener -locator <share URL or file ID> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	application, err := app.NewApplication(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	result, err := application.ScreenService.Run(context.Background(), services.ScreenRequest{
		Locator:          *locator,
		Date:             *date,
		Window:           *window,
		TopN:             *topN,
		LimitUpThreshold: *limitUp,
		VolumeMultiple:   *volumeMultiple,
		Refresh:          *refresh,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "screen run failed: %v\n", err)
		os.Exit(1)
	}

	printResult(result)

	if *outDir != "" {
		if err := exportResult(application, result, *outDir); err != nil {
			fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nCSV exports written to %s\n", *outDir)
	}
}

func printResult(result *services.ScreenResult) {
	fmt.Printf("交易日 %s  均量窗口 %d 日\n", result.TradeDate, result.Window)

	printScreen("漲停股", result.LimitUp, func(r domain.DerivedRecord) string {
		return fmt.Sprintf("漲跌幅 %s%%  成交量 %s", optional(r.ChangePercent), optional(r.Volume))
	})
	printScreen("融券增加", result.ShortMovers, func(r domain.DerivedRecord) string {
		return fmt.Sprintf("融券增減 %s 張", optional(r.ShortChange))
	})
	printScreen("爆量股", result.VolumeAnomalies, func(r domain.DerivedRecord) string {
		return fmt.Sprintf("量比 %s  均量 %s", optional(r.VolumeRatio), optional(r.AvgVolume))
	})

	if len(result.Notes) > 0 {
		fmt.Printf("\n相關分析筆記:\n")
		for code, notes := range result.Notes {
			for _, n := range notes {
				fmt.Printf("  %s  [%s] %s\n", code, n.Sentiment, n.Thesis)
			}
		}
	}
}

func printScreen(title string, records []domain.DerivedRecord, detail func(domain.DerivedRecord) string) {
	fmt.Printf("\n%s (%d)\n", title, len(records))
	for _, r := range records {
		fmt.Printf("  %-8s %-12s %s\n", r.Code, r.Name, detail(r))
	}
}

func exportResult(application *app.Application, result *services.ScreenResult, dir string) error {
	writer := exporter.NewCSVWriter(application.Logger)
	exports := map[string][]domain.DerivedRecord{
		"limit_up.csv":         result.LimitUp,
		"short_movers.csv":     result.ShortMovers,
		"volume_anomalies.csv": result.VolumeAnomalies,
	}
	for name, records := range exports {
		if err := writer.WriteScreen(filepath.Join(dir, name), records); err != nil {
			return err
		}
	}
	return nil
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

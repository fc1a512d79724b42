// Package main provides the AEMET OpenData command line client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/devskill-org/aemet/aemet"
	"github.com/devskill-org/aemet/config"
	"github.com/devskill-org/aemet/municipio"
	"github.com/devskill-org/aemet/utils"
)

func main() {
	// Command line flags
	var (
		configFile = flag.String("config", "", "Configuration file path (defaults and environment when empty)")
		envFile    = flag.String("env", ".env", "Environment file loaded before the configuration")
		maps       = flag.Bool("maps", false, "Download estimated and predicted fire-risk maps for every region")
		forecast   = flag.String("forecast", "", "Municipality name to fetch the forecast for")
		hourly     = flag.Bool("hourly", false, "Fetch the hourly forecast instead of the daily one")
		search     = flag.String("search", "", "Search the AEMET municipality master data")
		help       = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help || (!*maps && *forecast == "" && *search == "") {
		showHelp()
		return
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Println("Error loading environment file:", err)
		return
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Println("Error loading configuration:", err)
		return
	}

	logger := log.New(os.Stdout, "[AEMET] ", log.LstdFlags)

	client := aemet.NewClientWithHTTPClient(aemet.NewHTTPClient(cfg.APITimeout, cfg.InsecureSkipVerify), cfg.APIKey)
	client.SetBaseURL(cfg.BaseURL)
	client.SetUserAgent(cfg.UserAgent)
	client.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *maps {
		runMapDownloads(ctx, client, cfg.OutputDir, logger)
	}

	if *forecast != "" {
		resolution := aemet.Daily
		if *hourly {
			resolution = aemet.Hourly
		}
		if err := runForecast(ctx, client, cfg, *forecast, resolution); err != nil {
			logger.Printf("Forecast error: %v", err)
		}
	}

	if *search != "" {
		if err := runSearch(ctx, client, *search); err != nil {
			logger.Printf("Search error: %v", err)
		}
	}
}

// runMapDownloads downloads every estimated map and every predicted
// day/region combination, one at a time
func runMapDownloads(ctx context.Context, client *aemet.Client, outputDir string, logger *log.Logger) {
	for _, region := range aemet.Regions {
		target := filepath.Join(outputDir, fmt.Sprintf("estimado-%s.jpg", region))
		result, err := client.DownloadEstimatedFireRiskMap(ctx, region, target)
		reportDownload(logger, target, result, err)
	}

	for _, region := range aemet.Regions {
		for _, day := range aemet.ForecastDays {
			target := filepath.Join(outputDir, fmt.Sprintf("previsto-%s%d.jpg", region, day))
			result, err := client.DownloadPredictedFireRiskMap(ctx, day, region, target)
			reportDownload(logger, target, result, err)
		}
	}
}

func reportDownload(logger *log.Logger, target string, result *aemet.DownloadResult, err error) {
	if err == nil {
		logger.Printf("Saved %s (%d bytes)", result.OutputFile, result.Bytes)
		return
	}

	status := 0
	if result != nil {
		status = result.Status
	}

	var (
		apiErr  *aemet.APIError
		netErr  *aemet.NetworkError
		fileErr *aemet.FileError
	)
	switch {
	case errors.As(err, &apiErr):
		logger.Printf("%s: upstream status %d: %s", target, status, apiErr.Message)
	case errors.As(err, &netErr):
		logger.Printf("%s: no response: %v", target, netErr.Err)
	case errors.As(err, &fileErr):
		logger.Printf("%s: write failed: %v", target, fileErr.Err)
	default:
		logger.Printf("%s: %v (status %d)", target, err, status)
	}
}

func runForecast(ctx context.Context, client *aemet.Client, cfg *config.Config, name string, resolution aemet.Resolution) error {
	directory, err := municipio.LoadFile(cfg.MunicipalitiesFile)
	if err != nil {
		return err
	}

	m, err := directory.FindByName(name)
	if err != nil {
		return err
	}

	forecast, err := client.FetchForecast(ctx, m.Code(), resolution)
	if err != nil {
		return err
	}

	loc, err := cfg.TimeLocation()
	if err != nil {
		return err
	}

	fmt.Printf("\n%s forecast for %s (%s), %s\n", resolution, forecast.Name, forecast.Province, m.Code())
	if generated, err := forecast.GeneratedTime(loc); err == nil {
		fmt.Printf("Generated: %s\n", generated.Format("2006-01-02 15:04 MST"))
	}
	fmt.Println()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if resolution == aemet.Hourly {
		fmt.Fprintln(tw, "Date\tSunrise\tSunset\tTemperatures\tPrecipitation")
		for i := range forecast.Hourly {
			entry := &forecast.Hourly[i]
			temps, _ := entry.Temperatures()
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%v\n", shortDate(entry.Date, loc), entry.Sunrise, entry.Sunset, joinValues(temps), entry.HasPrecipitation())
		}
		return nil
	}

	fmt.Fprintln(tw, "Date\tMin\tMax\tUV max")
	for i := range forecast.Daily {
		entry := &forecast.Daily[i]
		uv := "-"
		if entry.UVMax != nil {
			uv = entry.UVMax.String()
		}
		low, high := "-", "-"
		if temp, err := entry.TemperatureRange(); err == nil {
			low, high = temp.Min.String(), temp.Max.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", shortDate(entry.Date, loc), low, high, uv)
	}
	return nil
}

func runSearch(ctx context.Context, client *aemet.Client, name string) error {
	locations, err := client.SearchMunicipalityLocations(ctx, name)
	if err != nil {
		return err
	}

	today := time.Now()
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "Code\tName\tAltitude\tSunrise\tSunset")
	for _, loc := range locations {
		sunrise, sunset := "-", "-"
		if times, err := loc.SunTimes(today); err == nil {
			sunrise, sunset = times.Sunrise.Format("15:04"), times.Sunset.Format("15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", loc.Code(), loc.Name, loc.Altitude, sunrise, sunset)
	}
	return nil
}

func shortDate(fecha string, loc *time.Location) string {
	t, err := utils.ParseLocalTimestamp(fecha, loc)
	if err != nil {
		return fecha
	}
	return t.Format("Mon 02 Jan")
}

func joinValues(values []aemet.PeriodValue) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += " "
		}
		out += v.Value.String()
	}
	return out
}

func showHelp() {
	fmt.Println("AEMET OpenData client - Spanish municipality forecasts and fire-risk maps")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  aemet [OPTIONS]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("ENVIRONMENT:")
	fmt.Printf("  %s, %s, %s override the configuration file.\n", config.EnvAPIKey, config.EnvAPIKeyFile, config.EnvBaseURL)
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Download all fire-risk maps into the output directory")
	fmt.Println("  aemet -maps")
	fmt.Println()
	fmt.Println("  # Weekly forecast for a municipality from the local dataset")
	fmt.Println("  aemet -forecast=Fuenmayor")
	fmt.Println()
	fmt.Println("  # Hourly forecast with a custom configuration")
	fmt.Println("  aemet -config=config.json -forecast=Fuenmayor -hourly")
	fmt.Println()
	fmt.Println("  # Look up municipality codes and sun times")
	fmt.Println("  aemet -search=Fuenmayor")
}

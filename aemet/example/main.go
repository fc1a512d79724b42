// Package main provides an example of using the aemet client to fetch a
// municipality forecast and a fire-risk map.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/devskill-org/aemet/aemet"
)

func main() {
	// The key is issued at https://opendata.aemet.es/centrodedescargas/altaUsuario
	client := aemet.NewClient(os.Getenv("AEMET_API_KEY"))
	client.SetLogger(log.New(os.Stdout, "[AEMET] ", log.LstdFlags))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// Fuenmayor, La Rioja
	forecast, err := client.FetchForecast(ctx, "26064", aemet.Hourly)
	if err != nil {
		// Handle different error types
		switch e := err.(type) {
		case *aemet.APIError:
			log.Fatalf("API error %d: %s", e.StatusCode, e.Message)
		case *aemet.ValidationError:
			log.Fatalf("Validation error: %s", e.Message)
		case *aemet.NetworkError:
			log.Fatalf("Network error: %v", e.Err)
		case *aemet.DataError:
			log.Fatalf("Data error: %v", e)
		default:
			log.Fatalf("Unknown error: %v", err)
		}
	}

	madrid, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		madrid = time.UTC
	}

	fmt.Printf("Hourly forecast for %s (%s)\n", forecast.Name, forecast.Province)
	if generated, err := forecast.GeneratedTime(madrid); err == nil {
		fmt.Printf("Generated: %s\n\n", generated.Format("2006-01-02 15:04:05"))
	}

	if today := forecast.HourlyAt(time.Now().In(madrid)); today != nil {
		fmt.Println("=== TODAY ===")
		fmt.Printf("Sunrise: %s  Sunset: %s\n", today.Sunrise, today.Sunset)

		if temps, err := today.Temperatures(); err == nil {
			for _, t := range temps {
				fmt.Printf("  %sh  %s°C\n", t.Period, t.Value)
			}
		}
		fmt.Printf("Precipitation expected: %v\n\n", today.HasPrecipitation())
	}

	result, err := client.DownloadPredictedFireRiskMap(ctx, aemet.Tomorrow, aemet.Peninsula, "previsto-p1.jpg")
	if err != nil {
		status := 0
		if result != nil {
			status = result.Status
		}
		log.Fatalf("Map download failed (status %d): %v", status, err)
	}
	fmt.Printf("Saved %s (%d bytes)\n", result.OutputFile, result.Bytes)
}

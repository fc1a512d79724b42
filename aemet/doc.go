// Package aemet provides a Go client library for the AEMET OpenData API.
//
// AEMET (Agencia Estatal de Meteorología) publishes municipality forecasts and
// fire-risk maps. Every resource is served in two hops: the first request,
// authenticated with an API key, returns a small envelope whose "datos" field
// points to the real payload; the second request downloads that payload.
// The client performs both hops and decodes the result into typed records.
//
// Basic Usage:
//
//	client := aemet.NewClient(apiKey)
//
//	forecast, err := client.FetchForecast(ctx, "44001", aemet.Hourly)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, entry := range forecast.Hourly {
//		fmt.Printf("%s sunrise %s sunset %s\n", entry.Date, entry.Sunrise, entry.Sunset)
//	}
//
// Fire-risk maps are written straight to disk:
//
//	result, err := client.DownloadPredictedFireRiskMap(ctx, aemet.Tomorrow, aemet.Peninsula, "previsto-p1.jpg")
//
// API Endpoints:
//
// - FetchForecast(): daily (weekly horizon) or hourly municipality forecast
// - DownloadFireRiskMap(): estimated or predicted fire-risk map image
// - SearchMunicipality(): raw municipality master data
//
// Hourly entries missing any upstream field are dropped from the result
// rather than failing the whole forecast. Every other missing field surfaces
// as a *DataError.
//
// For more information about the API, visit: https://opendata.aemet.es/dist/index.html
package aemet

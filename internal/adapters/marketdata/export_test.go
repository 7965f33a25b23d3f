package marketdata

// NewProviderWithClient exports newProviderWithClient for testing.
var (
	NewProviderWithClient = newProviderWithClient
	ParseSeries           = parseSeries
	EncodeSeries          = encodeSeries
)

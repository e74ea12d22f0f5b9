package server

import (
	"httpstack/application/http"
)

type Options struct {
	Decode http.DecodeOptions
}

// DefaultOptions fills zero values with usable defaults.
func DefaultOptions() Options {
	return Options{
		Decode: http.DefaultDecodeOptions,
	}
}

package main

const (
	// CLI defaults, matching the storage ring reference table
	defaultFrf        = "500"
	defaultDivider    = 328
	defaultMultiplier = 77
	defaultSamples    = "77"
	defaultOffset     = "0"

	// WAV export
	defaultWAVRate = 48000

	// Output file formats
	formatCSV = "csv"
	formatWAV = "wav"

	// File permissions for generated tables
	outputFileMode = 0o644
	outputDirMode  = 0o755
)

package typeahead

import "log/slog"

// Config configures an Engine. Every field is optional; DefaultConfig
// supplies the zero-value defaults, mirroring the teacher's
// Options/DefaultOptions pattern.
type Config struct {
	// BytesPoolSize is the scratch-buffer pool's capacity.
	BytesPoolSize int
	// ByteArraySize is the canonical size, in bytes, of each pooled buffer.
	ByteArraySize int
	// LoggingEnabled toggles the one-line-per-query log emitted after search.
	LoggingEnabled bool
	// PartialReadEnabled switches adjacency reads from GetBytes (full,
	// may reallocate) to ReadBytes (best-effort partial, never reallocates).
	PartialReadEnabled bool
	// WeightAdjuster combines 1st/2nd-degree strengths for 2-hop scoring.
	WeightAdjuster WeightAdjuster
	// BloomHashFuncs is the number of hash functions the Bloom Filter uses per term.
	BloomHashFuncs int
	// Logger receives structured query/index log lines. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns an engine configuration with the documented defaults.
func DefaultConfig() Config {
	return Config{
		BytesPoolSize:      DefaultBytesPoolSize,
		ByteArraySize:      DefaultByteArraySize,
		LoggingEnabled:     true,
		PartialReadEnabled: false,
		WeightAdjuster:     DefaultWeightAdjuster(),
		BloomHashFuncs:     4,
		Logger:             slog.Default(),
	}
}

func (c *Config) applyDefaults() {
	if c.BytesPoolSize <= 0 {
		c.BytesPoolSize = DefaultBytesPoolSize
	}
	if c.ByteArraySize <= 0 {
		c.ByteArraySize = DefaultByteArraySize
	}
	if c.WeightAdjuster == nil {
		c.WeightAdjuster = DefaultWeightAdjuster()
	}
	if c.BloomHashFuncs <= 0 {
		c.BloomHashFuncs = 4
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

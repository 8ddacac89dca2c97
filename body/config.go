package body

// DefaultMaxHeaderBytes bounds the header section of a single multipart block.
const DefaultMaxHeaderBytes = 8 << 10

type Config struct {
	// TempDir receives uploaded files. Empty means os.TempDir().
	TempDir string `mapstructure:"temp_dir" default:""`
	// RawValues disables HTML escaping of form values.
	RawValues      bool `mapstructure:"raw_values" default:"false"`
	MaxHeaderBytes int  `mapstructure:"max_header_bytes" default:"8192"`
}

func (c Config) maxHeaderBytes() int {
	if c.MaxHeaderBytes <= 0 {
		return DefaultMaxHeaderBytes
	}
	return c.MaxHeaderBytes
}

package chunktree

// DefaultWidth is the leaf width used when a Config does not specify one.
const DefaultWidth = 4096

// Config configures tree construction.
type Config struct {
	// Width is the maximum number of bytes a leaf built by FromBytes will hold.
	Width int
}

func (cfg Config) normalized() Config {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	return cfg
}

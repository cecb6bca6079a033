package operations

// DefaultWorkers is the number of accounts scanned concurrently by default
const DefaultWorkers = 4

// Config represents the run execution configuration
type Config struct {
	// Maximum accounts scanned at once
	Workers int `json:"workers"`
}

// NewConfig returns the default run configuration
func NewConfig() *Config {
	return &Config{Workers: DefaultWorkers}
}

func (c *Config) workers() int {
	if c == nil || c.Workers < 1 {
		return DefaultWorkers
	}
	return c.Workers
}

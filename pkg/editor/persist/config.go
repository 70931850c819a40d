package persist

import "time"

// Config of the snapshot store and of the autosaver.
type Config struct {
	Path             string        `yaml:"path" validate:"required_without=InMemory"`
	InMemory         bool          `yaml:"in_memory"`
	SyncWrites       bool          `yaml:"sync_writes"`
	AutosaveInterval time.Duration `yaml:"autosave_interval" validate:"gt=0"`
	GCInterval       time.Duration `yaml:"gc_interval" validate:"gte=0"`
	GCDiscardRatio   float64       `yaml:"gc_discard_ratio" validate:"gte=0,lte=1"`
}

func DefaultConfig() Config {
	return Config{
		InMemory:         true,
		AutosaveInterval: 2 * time.Second,
		GCInterval:       5 * time.Minute,
		GCDiscardRatio:   0.5,
	}
}

package logstream

import "time"

// Config locates the push channel.
type Config struct {
	URL                string        `yaml:"url" validate:"omitempty,url"`
	Namespace          string        `yaml:"namespace" validate:"required,startswith=/"`
	Event              string        `yaml:"event" validate:"required"`
	ConnectTimeout     time.Duration `yaml:"connect_timeout" validate:"gt=0"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
}

// DefaultConfig returns the channel settings of the task log namespace.
func DefaultConfig() Config {
	return Config{
		Namespace:      "/pty",
		Event:          "sio_streamed_task_data",
		ConnectTimeout: 10 * time.Second,
	}
}

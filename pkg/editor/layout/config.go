package layout

// Config holds the layout parameters. NodeWidth and NodeHeight are the spacing units before rotation:
// NodeWidth separates nodes within a layer, NodeHeight separates layers.
type Config struct {
	NodeWidth         float64 `yaml:"node_width" validate:"gt=0"`
	NodeHeight        float64 `yaml:"node_height" validate:"gt=0"`
	ScaleX            float64 `yaml:"scale_x" validate:"gt=0"`
	ScaleY            float64 `yaml:"scale_y" validate:"gt=0"`
	OffsetX           float64 `yaml:"offset_x"`
	OffsetY           float64 `yaml:"offset_y"`
	DecrossIterations int     `yaml:"decross_iterations" validate:"gte=0"`
	CenterIterations  int     `yaml:"center_iterations" validate:"gte=0"`
}

// DefaultConfig returns the parameters used by the editor canvas.
func DefaultConfig() Config {
	return Config{
		NodeWidth:         1,
		NodeHeight:        1,
		ScaleX:            300,
		ScaleY:            170,
		OffsetX:           100,
		OffsetY:           100,
		DecrossIterations: 24,
		CenterIterations:  8,
	}
}

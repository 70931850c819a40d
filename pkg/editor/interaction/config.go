package interaction

import "github.com/askiada/pipeline-editor/pkg/editor/model"

// Config holds the gesture parameters. Sizes are in canvas units, DragThreshold is in screen pixels.
type Config struct {
	StepWidth     float64  `yaml:"step_width" validate:"gt=0"`
	StepHeight    float64  `yaml:"step_height" validate:"gt=0"`
	AnchorRadius  float64  `yaml:"anchor_radius" validate:"gt=0"`
	DragThreshold float64  `yaml:"drag_threshold" validate:"gte=0"`
	DropOffsetX   float64  `yaml:"drop_offset_x"`
	DropOffsetY   float64  `yaml:"drop_offset_y"`
	Extensions    []string `yaml:"extensions" validate:"min=1,dive,startswith=."`
	// DropWorkers bounds the concurrent path checks of a file drop.
	DropWorkers int `yaml:"drop_workers" validate:"gt=0"`
}

func DefaultConfig() Config {
	return Config{
		StepWidth:     190,
		StepHeight:    105,
		AnchorRadius:  10,
		DragThreshold: 3,
		DropOffsetX:   20,
		DropOffsetY:   20,
		Extensions:    []string{".ipynb", ".py", ".r", ".sh", ".jl", ".js"},
		DropWorkers:   4,
	}
}

// StepSize is the footprint of a step.
func (c Config) StepSize() model.Size {
	return model.Size{Width: c.StepWidth, Height: c.StepHeight}
}

func (c Config) dropOffset() model.Point {
	return model.Point{X: c.DropOffsetX, Y: c.DropOffsetY}
}

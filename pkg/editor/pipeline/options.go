package pipeline

import (
	"log/slog"

	"github.com/askiada/pipeline-editor/pkg/editor/measure"
	"github.com/askiada/pipeline-editor/pkg/editor/model"
)

type Option func(g *Graph)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithRecorder(recorder measure.Recorder) Option {
	return func(g *Graph) {
		if recorder != nil {
			g.recorder = recorder
		}
	}
}

// WithIDGenerator replaces the UUID generator used for new steps.
func WithIDGenerator(newID func() string) Option {
	return func(g *Graph) {
		g.newID = newID
	}
}

type StepOption func(s *model.Step)

// WithStepID keeps a known id instead of generating one, used when loading a saved pipeline.
func WithStepID(id string) StepOption {
	return func(s *model.Step) {
		s.ID = id
	}
}

func WithTitle(title string) StepOption {
	return func(s *model.Step) {
		if title != "" {
			s.Title = title
		}
	}
}

func WithEnvironment(environment string) StepOption {
	return func(s *model.Step) {
		s.Environment = environment
	}
}

func WithHidden(hidden bool) StepOption {
	return func(s *model.Step) {
		s.Hidden = hidden
	}
}

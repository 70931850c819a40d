package editor

import (
	"log/slog"

	"github.com/askiada/pipeline-editor/internal/ctxlog"
	"github.com/askiada/pipeline-editor/pkg/editor/interaction"
	"github.com/askiada/pipeline-editor/pkg/editor/logstream"
	"github.com/askiada/pipeline-editor/pkg/editor/measure"
	"github.com/askiada/pipeline-editor/pkg/editor/model"
	"github.com/askiada/pipeline-editor/pkg/editor/persist"
	"github.com/askiada/pipeline-editor/pkg/editor/session"
)

type Option func(e *Editor)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = ctxlog.OrDiscard(logger)
	}
}

func WithRecorder(recorder measure.Recorder) Option {
	return func(e *Editor) {
		if recorder != nil {
			e.recorder = recorder
		}
	}
}

// WithNotifier receives the notices of the canvas and of the session. It must not call back into the editor.
func WithNotifier(notifier model.Notifier) Option {
	return func(e *Editor) {
		if notifier != nil {
			e.notifier = notifier
		}
	}
}

// WithSessionService replaces the HTTP session client.
func WithSessionService(svc session.Service) Option {
	return func(e *Editor) {
		e.svc = svc
	}
}

// WithStore enables the autosave of the open pipeline.
func WithStore(store persist.Store) Option {
	return func(e *Editor) {
		e.store = store
	}
}

// WithStream renders the logs of the open pipeline from ch into term.
func WithStream(ch logstream.Channel, term logstream.Terminal) Option {
	return func(e *Editor) {
		e.channel = ch
		e.terminal = term
	}
}

// WithPathValidator replaces the check of dropped files. By default a dropped file must exist under the project
// root when one is configured.
func WithPathValidator(validator interaction.PathValidator) Option {
	return func(e *Editor) {
		e.validator = validator
	}
}

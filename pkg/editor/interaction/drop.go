package interaction

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/pipeline-editor/pkg/editor/model"
)

// Accepts reports whether a file extension is on the allow-list.
func (c Config) Accepts(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))

	return slices.ContainsFunc(c.Extensions, func(allowed string) bool {
		return strings.ToLower(allowed) == ext
	})
}

// fileDrop creates one step per accepted file. The first step is centred under the pointer and the next ones are
// shifted by the drop offset so they do not overlap.
func (m *Machine) fileDrop(ctx context.Context, ev FileDrop) error {
	if m.state.Mode != ModeIdle {
		return nil
	}

	paths := m.acceptedPaths(ctx, ev.Paths)
	if len(paths) == 0 {
		m.notifier.Notify(model.Notice{Level: model.NoticeTransient, Message: "None of the dropped files can be used as a step."})

		return nil
	}

	base := m.view.ScreenToCanvas(ev.Screen).Sub(m.cfg.StepSize().Half())
	created := make([]string, 0, len(paths))

	for i, path := range paths {
		id, err := m.graph.AddStep(path, base.Add(m.cfg.dropOffset().Scale(float64(i))))
		if err != nil {
			return errors.Wrapf(err, "unable to add step for %s", path)
		}

		created = append(created, id)
	}

	m.state.clearSelection()
	m.state.Selection = created
	m.logger.Debug("files dropped", "steps", len(created))

	return nil
}

// acceptedPaths filters by extension then runs the validator on the remaining paths concurrently. The drop order
// is kept.
func (m *Machine) acceptedPaths(ctx context.Context, paths []string) []string {
	candidates := make([]string, 0, len(paths))
	for _, path := range paths {
		if m.cfg.Accepts(path) {
			candidates = append(candidates, path)
		}
	}

	if m.validator == nil || len(candidates) == 0 {
		return candidates
	}

	valid := make([]bool, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, m.cfg.DropWorkers))

	for i, path := range candidates {
		g.Go(func() error {
			if err := m.validator(gctx, path); err != nil {
				m.logger.Debug("dropped file rejected", "path", path, "error", err)

				return nil
			}

			valid[i] = true

			return nil
		})
	}

	_ = g.Wait()

	res := candidates[:0]
	for i, path := range candidates {
		if valid[i] {
			res = append(res, path)
		}
	}

	return res
}

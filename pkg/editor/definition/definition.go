// Package definition converts a pipeline graph to and from its saved JSON document.
package definition

import (
	"sort"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"github.com/askiada/pipeline-editor/pkg/editor/model"
	"github.com/askiada/pipeline-editor/pkg/editor/pipeline"
)

// CurrentVersion is written in every new document.
const CurrentVersion = "1.2.3"

// Definition is a saved pipeline.
type Definition struct {
	UUID       string                    `json:"uuid"`
	Name       string                    `json:"name"`
	Version    string                    `json:"version,omitempty"`
	Settings   map[string]any            `json:"settings"`
	Parameters map[string]any            `json:"parameters"`
	Services   map[string]any            `json:"services,omitempty"`
	Steps      map[string]StepDefinition `json:"steps"`
}

// StepDefinition is a saved step.
type StepDefinition struct {
	UUID                string         `json:"uuid"`
	Title               string         `json:"title"`
	FilePath            string         `json:"file_path"`
	Environment         string         `json:"environment"`
	IncomingConnections []string       `json:"incoming_connections"`
	Parameters          map[string]any `json:"parameters"`
	Kernel              Kernel         `json:"kernel"`
	MetaData            MetaData       `json:"meta_data"`
}

type Kernel struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type MetaData struct {
	Position [2]float64 `json:"position"`
	Hidden   bool       `json:"hidden"`
}

// New returns an empty document.
func New(uuid, name string) *Definition {
	return &Definition{
		UUID:       uuid,
		Name:       name,
		Version:    CurrentVersion,
		Settings:   map[string]any{},
		Parameters: map[string]any{},
		Steps:      map[string]StepDefinition{},
	}
}

// SortedStepIDs returns the step ids in lexical order.
func (d *Definition) SortedStepIDs() []string {
	ids := make([]string, 0, len(d.Steps))
	for id := range d.Steps {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// FromGraph returns a copy of base whose steps are the steps of g. Fields the graph does not know about, such as the
// step parameters and kernel, are kept from base for the steps still present.
func FromGraph(base *Definition, g *pipeline.Graph) *Definition {
	res := &Definition{
		UUID:       base.UUID,
		Name:       base.Name,
		Version:    base.Version,
		Settings:   base.Settings,
		Parameters: base.Parameters,
		Services:   base.Services,
		Steps:      make(map[string]StepDefinition, g.Len()),
	}
	if res.Version == "" {
		res.Version = CurrentVersion
	}

	for _, step := range g.Steps() {
		prev := base.Steps[step.ID]

		params := prev.Parameters
		if params == nil {
			params = map[string]any{}
		}

		incoming := step.IncomingConnections
		if incoming == nil {
			incoming = []string{}
		}

		res.Steps[step.ID] = StepDefinition{
			UUID:                step.ID,
			Title:               step.Title,
			FilePath:            step.FilePath,
			Environment:         step.Environment,
			IncomingConnections: incoming,
			Parameters:          params,
			Kernel:              prev.Kernel,
			MetaData: MetaData{
				Position: [2]float64{step.Position.X, step.Position.Y},
				Hidden:   step.Hidden,
			},
		}
	}

	return res
}

// ToGraph builds the graph described by d. Steps are inserted in sorted id order so that loading the same document
// always yields the same graph. Any dangling or cyclic connection aborts the load.
func ToGraph(d *Definition, opts ...pipeline.Option) (*pipeline.Graph, error) {
	g := pipeline.New(opts...)

	ids := d.SortedStepIDs()
	for _, id := range ids {
		step := d.Steps[id]
		if step.UUID != "" && step.UUID != id {
			return nil, errors.Wrapf(ErrMismatchedStepID, "key %s holds step %s", id, step.UUID)
		}

		_, err := g.AddStep(step.FilePath,
			model.Point{X: step.MetaData.Position[0], Y: step.MetaData.Position[1]},
			pipeline.WithStepID(id),
			pipeline.WithTitle(step.Title),
			pipeline.WithEnvironment(step.Environment),
			pipeline.WithHidden(step.MetaData.Hidden),
		)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to load step %s", id)
		}
	}

	for _, id := range ids {
		for _, src := range d.Steps[id].IncomingConnections {
			if err := g.AddConnection(src, id); err != nil {
				return nil, errors.Wrapf(err, "unable to load connection %s -> %s", src, id)
			}
		}
	}

	return g, nil
}

// Marshal encodes d as indented JSON with sorted keys.
func Marshal(d *Definition) ([]byte, error) {
	buf, err := sonic.ConfigStd.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode pipeline definition")
	}

	return buf, nil
}

// Unmarshal decodes a document and checks its required fields.
func Unmarshal(buf []byte) (*Definition, error) {
	var d Definition
	if err := sonic.Unmarshal(buf, &d); err != nil {
		return nil, errors.Wrap(err, "unable to decode pipeline definition")
	}

	if d.UUID == "" {
		return nil, ErrMissingUUID
	}

	if d.Steps == nil {
		d.Steps = map[string]StepDefinition{}
	}

	return &d, nil
}

package editor

import "github.com/askiada/pipeline-editor/pkg/editor/measure"

// changeRecorder forwards to the editor recorder and reports every graph mutation.
type changeRecorder struct {
	measure.Recorder
	changed func()
}

func (r changeRecorder) GraphMutation(op string) {
	r.Recorder.GraphMutation(op)
	r.changed()
}

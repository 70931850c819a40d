package drawer

import (
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/pipeline-editor/pkg/editor/model"
)

const fallbackColour = "#000000"

func hexColour(red, green, blue uint8) string {
	colour, err := colors.RGB(red, green, blue)
	if err != nil {
		return fallbackColour
	}

	return colour.ToHEX().String()
}

var (
	connectionStroke = hexColour(158, 158, 158)
	selectedStroke   = hexColour(33, 150, 243)
	stepStroke       = hexColour(117, 117, 117)
	missingStroke    = hexColour(229, 57, 53)
)

var statusFill = map[model.RunStatus]string{
	model.RunStatusIdle:    hexColour(255, 255, 255),
	model.RunStatusPending: hexColour(238, 238, 238),
	model.RunStatusStarted: hexColour(255, 224, 178),
	model.RunStatusSuccess: hexColour(200, 230, 201),
	model.RunStatusFailure: hexColour(255, 205, 210),
	model.RunStatusAborted: hexColour(207, 216, 220),
}

// StepFill returns the fill colour of a step in the given run status.
func StepFill(status model.RunStatus) string {
	if fill, ok := statusFill[status]; ok {
		return fill
	}

	return statusFill[model.RunStatusIdle]
}

// StepStroke returns the border colour of a step.
func StepStroke(step *model.Step, selected bool) string {
	switch {
	case selected:
		return selectedStroke
	case step.FileMissing:
		return missingStroke
	default:
		return stepStroke
	}
}

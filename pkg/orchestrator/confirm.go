package orchestrator

import (
	"github.com/AlecAivazis/survey/v2"
)

// Confirmer gates the interactive confirmation points of a deployment.
// Implementations return false for a decline; an error means the prompt
// itself could not be presented.
type Confirmer interface {
	// ConfirmToken prompts and succeeds only if the operator types token
	// exactly.
	ConfirmToken(message, token string) (bool, error)

	// Confirm asks a yes/no question, defaulting to no.
	Confirm(message string) (bool, error)
}

// SurveyConfirmer prompts on the terminal.
type SurveyConfirmer struct{}

func (SurveyConfirmer) ConfirmToken(message, token string) (bool, error) {
	var answer string
	if err := survey.AskOne(&survey.Input{Message: message}, &answer); err != nil {
		return false, err
	}
	return answer == token, nil
}

func (SurveyConfirmer) Confirm(message string) (bool, error) {
	var ok bool
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: false}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// autoConfirmer approves everything. Used in tests and CI mode paths where
// prompts must not block.
type autoConfirmer struct{}

func (autoConfirmer) ConfirmToken(string, string) (bool, error) { return true, nil }
func (autoConfirmer) Confirm(string) (bool, error)              { return true, nil }

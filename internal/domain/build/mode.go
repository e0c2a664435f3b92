package build

import (
	"fmt"
	"strings"
)

// Mode selects how a build reacts to failing steps.
type Mode string

const (
	Development Mode = "development"
	Production  Mode = "production"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Development, "dev", "":
		return Development, nil
	case Production, "prod":
		return Production, nil
	default:
		return "", fmt.Errorf("unknown build mode %q", s)
	}
}

// TrackingEnv is the analytics environment flag handed to templates.
func (m Mode) TrackingEnv() string {
	if m == Production {
		return "p"
	}
	return "t"
}

// Reporter surfaces build errors that are not allowed to stop the process.
type Reporter interface {
	ReportBuildError(headline string, err error)
}

// StepError is a build-step failure raised in production mode.
type StepError struct {
	Headline string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Headline, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// HandleStepError is the one error policy for style/script/template steps.
// Development reports the error and lets the caller carry on; production raises it.
func (m Mode) HandleStepError(headline string, err error, r Reporter) error {
	if err == nil {
		return nil
	}
	if m == Development {
		if r != nil {
			r.ReportBuildError(headline, err)
		}
		return nil
	}
	return &StepError{Headline: headline, Err: err}
}

// Package emotion turns frames into emotion labels.
package emotion

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/carecam/internal/constants"
)

// ErrClassification is carried by every Failed label.
var ErrClassification = errors.New("emotion classification failed")

// Kind tells the three label variants apart.
type Kind int

const (
	KindClassified Kind = iota
	KindDisabled
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindClassified:
		return "classified"
	case KindDisabled:
		return "disabled"
	case KindFailed:
		return "failed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Label is the outcome of one classification. Only Classified labels carry an
// emotion value and take part in switch detection.
type Label struct {
	kind  Kind
	value string
	err   error
}

// Classified returns a label for a successfully recognised emotion.
func Classified(value string) Label {
	return Label{kind: KindClassified, value: value}
}

// Disabled returns the label used when classification is switched off.
func Disabled() Label {
	return Label{kind: KindDisabled}
}

// Failed returns a label for a classification that could not produce a result.
// The cause is wrapped so errors.Is(label.Err(), ErrClassification) holds.
func Failed(cause error) Label {
	if cause == nil {
		return Label{kind: KindFailed, err: ErrClassification}
	}
	return Label{kind: KindFailed, err: fmt.Errorf("%w: %w", ErrClassification, cause)}
}

func (l Label) Kind() Kind { return l.kind }

func (l Label) IsClassified() bool { return l.kind == KindClassified }

// Value returns the emotion for Classified labels and "" otherwise.
func (l Label) Value() string {
	if l.kind != KindClassified {
		return ""
	}
	return l.value
}

// Err returns the failure cause for Failed labels and nil otherwise.
func (l Label) Err() error { return l.err }

// String renders the label for display and filenames.
func (l Label) String() string {
	switch l.kind {
	case KindClassified:
		return l.value
	case KindDisabled:
		return constants.LabelDisabled
	default:
		return constants.LabelUnknown
	}
}

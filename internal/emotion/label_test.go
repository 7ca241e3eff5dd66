package emotion

import (
	"errors"
	"testing"
)

func TestLabel_String(t *testing.T) {
	tests := []struct {
		name  string
		label Label
		want  string
	}{
		{"classified", Classified("happy"), "happy"},
		{"disabled", Disabled(), "disabled"},
		{"failed", Failed(errors.New("boom")), "Unknown"},
		{"failed without cause", Failed(nil), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.label.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLabel_Variants(t *testing.T) {
	c := Classified("sad")
	if !c.IsClassified() || c.Value() != "sad" || c.Err() != nil {
		t.Errorf("unexpected classified label %+v", c)
	}

	d := Disabled()
	if d.IsClassified() || d.Value() != "" || d.Kind() != KindDisabled {
		t.Errorf("unexpected disabled label %+v", d)
	}

	cause := errors.New("model crashed")
	f := Failed(cause)
	if f.IsClassified() || f.Value() != "" || f.Kind() != KindFailed {
		t.Errorf("unexpected failed label %+v", f)
	}
	if !errors.Is(f.Err(), ErrClassification) {
		t.Error("expected failed label to wrap ErrClassification")
	}
	if !errors.Is(f.Err(), cause) {
		t.Error("expected failed label to wrap its cause")
	}
}

func TestLabel_ClassifiedUnknownIsNotFailed(t *testing.T) {
	// A model may legitimately return a label spelled like the failure placeholder.
	l := Classified("Unknown")
	if !l.IsClassified() {
		t.Error("expected classified label")
	}
	if l == Failed(nil) {
		t.Error("classified and failed labels must differ")
	}
}

func TestKind_String(t *testing.T) {
	if KindFailed.String() != "failed" {
		t.Errorf("unexpected %q", KindFailed.String())
	}
	if Kind(42).String() != "Kind(42)" {
		t.Errorf("unexpected %q", Kind(42).String())
	}
}

// Package monitor ties the camera and the classifier together and records a
// snapshot whenever the dominant emotion switches rapidly.
package monitor

import (
	"sync"
	"time"
)

// DefaultSwitchThreshold is used when a detector is created with a negative threshold.
const DefaultSwitchThreshold = 2 * time.Second

// SwitchDetector decides which emotion changes are rapid enough to record.
//
// A change counts as rapid when no switch has been seen yet, or when it comes
// within threshold of the previous switch. The previous switch time advances on
// every change, rapid or not, so a slow drift through several emotions records
// only its first change.
type SwitchDetector struct {
	threshold time.Duration

	mu         sync.Mutex
	previous   string
	hasPrev    bool
	lastSwitch time.Time
	hasSwitch  bool
}

// DetectorState is a point-in-time copy of the detector fields.
type DetectorState struct {
	Previous   string        `json:"previous_emotion,omitempty"`
	LastSwitch *time.Time    `json:"last_switch,omitempty"`
	Threshold  time.Duration `json:"threshold"`
}

func NewSwitchDetector(threshold time.Duration) *SwitchDetector {
	if threshold < 0 {
		threshold = DefaultSwitchThreshold
	}
	return &SwitchDetector{threshold: threshold}
}

// Observe feeds one classified emotion seen at now and reports whether a
// snapshot should be recorded.
func (d *SwitchDetector) Observe(emotion string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.hasPrev {
		d.previous, d.hasPrev = emotion, true
		return false
	}
	if emotion == d.previous {
		return false
	}

	rapid := !d.hasSwitch || now.Sub(d.lastSwitch) <= d.threshold
	d.lastSwitch, d.hasSwitch = now, true
	d.previous = emotion
	return rapid
}

// Reset forgets the previous emotion and the last switch.
func (d *SwitchDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.previous, d.hasPrev = "", false
	d.lastSwitch, d.hasSwitch = time.Time{}, false
}

func (d *SwitchDetector) State() DetectorState {
	d.mu.Lock()
	defer d.mu.Unlock()
	state := DetectorState{Threshold: d.threshold}
	if d.hasPrev {
		state.Previous = d.previous
	}
	if d.hasSwitch {
		t := d.lastSwitch
		state.LastSwitch = &t
	}
	return state
}

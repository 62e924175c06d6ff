// Package activity defines the fixed wellness activity catalog and the
// editable weekly draft users build up before submitting.
package activity

import (
	"fmt"
	"math"
)

// Kind names one trackable wellness activity.
type Kind string

const (
	Walking        Kind = "Walking"
	Running        Kind = "Running"
	Biking         Kind = "Biking"
	Swimming       Kind = "Swimming"
	Yoga           Kind = "Yoga"
	Meditation     Kind = "Meditation"
	WeightTraining Kind = "Weight Training"
	Dancing        Kind = "Dancing"
	Hiking         Kind = "Hiking"
	Pilates        Kind = "Pilates"
)

// Catalog is the fixed, ordered set of trackable activities. It is defined
// once at start-up and never mutated.
var Catalog = []Kind{
	Walking,
	Running,
	Biking,
	Swimming,
	Yoga,
	Meditation,
	WeightTraining,
	Dancing,
	Hiking,
	Pilates,
}

// Entry is one activity's state within a draft or a stored submission.
type Entry struct {
	Checked bool    `json:"checked"`
	Hours   float64 `json:"hours"`
}

// MaxHours is the upper bound of the hours slider.
const MaxHours = 20

// ParseKind maps a user-supplied name onto a catalog kind.
func ParseKind(name string) (Kind, bool) {
	for _, k := range Catalog {
		if string(k) == name {
			return k, true
		}
	}
	return "", false
}

// ValidateHours rejects hours outside [0, MaxHours] or off the 0.5 step.
// Draft setters are total functions; this is the entry-point check for
// anything accepting user input.
func ValidateHours(hours float64) error {
	if hours < 0 || hours > MaxHours {
		return fmt.Errorf("hours must be between 0 and %d, got %g", MaxHours, hours)
	}
	if math.Abs(hours*2-math.Round(hours*2)) > 1e-9 {
		return fmt.Errorf("hours must be in 0.5 increments, got %g", hours)
	}
	return nil
}

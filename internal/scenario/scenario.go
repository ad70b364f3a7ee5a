// Package scenario provides scripted command schedules: timed position and
// torque commands published to the controller's topics during a run.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/rcjetpilot/rotors-simulator/internal/bus"
)

var (
	ErrNegativeTime = errors.New("scenario: command time must not be negative")
	ErrNoValue      = errors.New("scenario: command needs a position or a torque")
	ErrTwoValues    = errors.New("scenario: command must carry position or torque, not both")
)

// Step is one scheduled command. Exactly one of Position or Torque is set.
type Step struct {
	At       float64  `yaml:"at"`
	Position *float64 `yaml:"position,omitempty"`
	Torque   *float64 `yaml:"torque,omitempty"`
}

// Scenario is a named command script loaded from YAML.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Commands    []Step `yaml:"commands"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

// Schedule dispatches steps in time order as the simulation clock passes
// their deadlines.
type Schedule struct {
	steps []Step
	next  int
}

func NewSchedule(steps []Step) (*Schedule, error) {
	for i, s := range steps {
		if s.At < 0 {
			return nil, fmt.Errorf("command %d: %w", i, ErrNegativeTime)
		}
		if s.Position == nil && s.Torque == nil {
			return nil, fmt.Errorf("command %d: %w", i, ErrNoValue)
		}
		if s.Position != nil && s.Torque != nil {
			return nil, fmt.Errorf("command %d: %w", i, ErrTwoValues)
		}
	}

	sorted := make([]Step, len(steps))
	copy(sorted, steps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })

	return &Schedule{steps: sorted}, nil
}

// Dispatch publishes every step due at or before t and returns how many
// were sent.
func (s *Schedule) Dispatch(b *bus.Bus, positionTopic, torqueTopic string, t float64) int {
	sent := 0
	for s.next < len(s.steps) && s.steps[s.next].At <= t {
		step := s.steps[s.next]
		if step.Position != nil {
			b.Publish(positionTopic, bus.CommandPosition{MotorAngle: *step.Position})
		} else {
			b.Publish(torqueTopic, bus.CommandTorque{Torque: *step.Torque})
		}
		s.next++
		sent++
	}
	return sent
}

// Pending reports how many steps have not been dispatched yet.
func (s *Schedule) Pending() int { return len(s.steps) - s.next }

func (s *Schedule) Reset() { s.next = 0 }

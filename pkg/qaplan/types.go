// Plan is the contract between the planning stage and the execution stage
package qaplan

import (
	"errors"
	"fmt"
)

var ErrInvalidPlan = errors.New("invalid plan")

// Action is either CreateAlarm or DeleteAlarm
type Action interface {
	AlarmName() string
	isAction()
}

type CreateAlarm struct {
	Queue     string `json:"queue"`
	Alarm     string `json:"alarm"`
	Threshold int    `json:"threshold"`
}

func (c CreateAlarm) AlarmName() string { return c.Alarm }
func (c CreateAlarm) isAction()         {}

// serialized as a bare string (the alarm name) for compat with existing plan files
type DeleteAlarm struct {
	Alarm string
}

func (d DeleteAlarm) AlarmName() string { return d.Alarm }
func (d DeleteAlarm) isAction()         {}

type Summary struct {
	ToCreate int `json:"to_create"`
	ToDelete int `json:"to_delete"`
}

type Plan struct {
	Region      string        `json:"region"`
	AlarmSuffix string        `json:"alarm_suffix"`
	Create      []CreateAlarm `json:"create"`
	Delete      []DeleteAlarm `json:"delete"`
	Summary     Summary       `json:"summary"`
}

func New(region string, alarmSuffix string, creates []CreateAlarm, deletes []DeleteAlarm) *Plan {
	if creates == nil {
		creates = []CreateAlarm{}
	}
	if deletes == nil {
		deletes = []DeleteAlarm{}
	}

	return &Plan{
		Region:      region,
		AlarmSuffix: alarmSuffix,
		Create:      creates,
		Delete:      deletes,
		Summary: Summary{
			ToCreate: len(creates),
			ToDelete: len(deletes),
		},
	}
}

// creates first, then deletes (the order in which they're executed)
func (p *Plan) Actions() []Action {
	return append(p.CreateActions(), p.DeleteActions()...)
}

func (p *Plan) CreateActions() []Action {
	actions := []Action{}
	for _, create := range p.Create {
		actions = append(actions, create)
	}

	return actions
}

func (p *Plan) DeleteActions() []Action {
	actions := []Action{}
	for _, del := range p.Delete {
		actions = append(actions, del)
	}

	return actions
}

func (p *Plan) Empty() bool {
	return len(p.Create) == 0 && len(p.Delete) == 0
}

// structural checks only. alarm names need not end in the suffix: an orphan is anything
// that doesn't strip back to a queue.
func (p *Plan) Validate() error {
	if p.Summary.ToCreate != len(p.Create) {
		return invalid("summary.to_create=%d but %d create entries", p.Summary.ToCreate, len(p.Create))
	}

	if p.Summary.ToDelete != len(p.Delete) {
		return invalid("summary.to_delete=%d but %d delete entries", p.Summary.ToDelete, len(p.Delete))
	}

	for _, create := range p.Create {
		if create.Queue == "" {
			return invalid("create entry with empty queue")
		}

		if create.Alarm == "" {
			return invalid("create entry with empty alarm for %s", create.Queue)
		}

		if create.Threshold <= 0 {
			return invalid("non-positive threshold %d for %s", create.Threshold, create.Queue)
		}
	}

	for _, del := range p.Delete {
		if del.Alarm == "" {
			return invalid("delete entry with empty alarm")
		}
	}

	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidPlan, fmt.Sprintf(format, args...))
}

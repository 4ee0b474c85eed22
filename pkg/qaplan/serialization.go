package qaplan

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/function61/gokit/jsonfile"
)

func (d DeleteAlarm) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Alarm)
}

func (d *DeleteAlarm) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &d.Alarm)
}

func Serialize(plan *Plan) ([]byte, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	// don't want "null" for empty lists
	normalized := New(plan.Region, plan.AlarmSuffix, plan.Create, plan.Delete)

	return json.MarshalIndent(normalized, "", "  ")
}

func Parse(input io.Reader) (*Plan, error) {
	plan := &Plan{}
	if err := jsonfile.Unmarshal(input, plan, true); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	if plan.Create == nil {
		plan.Create = []CreateAlarm{}
	}
	if plan.Delete == nil {
		plan.Delete = []DeleteAlarm{}
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	return plan, nil
}

package models

import (
	"encoding/json"
	"fmt"
)

// TimingKind discriminates the timing variants a step can carry.
type TimingKind string

const (
	TimingManual    TimingKind = "manual"
	TimingAuto      TimingKind = "auto"
	TimingTrigger   TimingKind = "trigger"
	TimingRecurring TimingKind = "recurring"
)

// TimingLogic is a tagged variant describing when a step runs. Only the
// fields belonging to its kind are ever set; construct values through the
// NewXxxTiming helpers so illegal combinations cannot be built.
type TimingLogic struct {
	Kind          TimingKind `json:"kind"`
	Condition     string     `json:"condition,omitempty"`      // Trigger only
	Period        string     `json:"period,omitempty"`         // Recurring only
	Time          string     `json:"time,omitempty"`           // Recurring only, optional
	StopCondition string     `json:"stop_condition,omitempty"` // Recurring only, optional
}

func NewManualTiming() TimingLogic {
	return TimingLogic{Kind: TimingManual}
}

func NewAutoTiming() TimingLogic {
	return TimingLogic{Kind: TimingAuto}
}

func NewTriggerTiming(condition string) TimingLogic {
	return TimingLogic{Kind: TimingTrigger, Condition: condition}
}

func NewRecurringTiming(period, time, stopCondition string) TimingLogic {
	return TimingLogic{Kind: TimingRecurring, Period: period, Time: time, StopCondition: stopCondition}
}

// UnmarshalJSON decodes a timing variant and rejects field combinations
// that do not belong to the declared kind. A missing kind defaults to manual
// so records produced before the tag existed still load.
func (t *TimingLogic) UnmarshalJSON(data []byte) error {
	type plain TimingLogic

	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	if decoded.Kind == "" {
		decoded.Kind = TimingManual
	}

	switch decoded.Kind {
	case TimingManual, TimingAuto:
		if decoded.Condition != "" || decoded.Period != "" || decoded.Time != "" || decoded.StopCondition != "" {
			return fmt.Errorf("timing kind %q does not accept configuration fields", decoded.Kind)
		}
	case TimingTrigger:
		if decoded.Condition == "" {
			return fmt.Errorf("timing kind %q requires a condition", decoded.Kind)
		}

		if decoded.Period != "" || decoded.Time != "" || decoded.StopCondition != "" {
			return fmt.Errorf("timing kind %q does not accept recurring fields", decoded.Kind)
		}
	case TimingRecurring:
		if decoded.Period == "" {
			return fmt.Errorf("timing kind %q requires a period", decoded.Kind)
		}

		if decoded.Condition != "" {
			return fmt.Errorf("timing kind %q does not accept a trigger condition", decoded.Kind)
		}
	default:
		return fmt.Errorf("unknown timing kind: %q", decoded.Kind)
	}

	*t = TimingLogic(decoded)

	return nil
}

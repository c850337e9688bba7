package session

import "fmt"

// Phase is the lifecycle stage of an analysis session
type Phase int

const (
	Idle Phase = iota
	Staged
	Submitting
	Succeeded
	Failed
)

var phaseNames = map[Phase]string{
	Idle:       "idle",
	Staged:     "staged",
	Submitting: "submitting",
	Succeeded:  "succeeded",
	Failed:     "failed",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Terminal reports whether the phase holds an outcome
func (p Phase) Terminal() bool {
	return p == Succeeded || p == Failed
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

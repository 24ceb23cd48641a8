package scenario

import (
	"errors"
	"fmt"

	"github.com/javanhut/archived/internal/archive"
)

// Check is the outcome of one expectation step.
type Check struct {
	Step    int    // 1-based step number
	Op      Op     // Expectation kind
	Version string // Version queried, if any
	Want    int64
	Got     int64
	Err     string // Error returned by the archive, if any
	OK      bool
}

// Describe returns a one-line label for the check.
func (c Check) Describe() string {
	switch c.Op {
	case OpExpectValue:
		return fmt.Sprintf("Value at step %d.", c.Step)
	case OpExpectDiff:
		return fmt.Sprintf("Diff to current from %s.", c.Version)
	case OpExpectInvalid:
		return fmt.Sprintf("Version %s invalidated.", c.Version)
	default:
		return fmt.Sprintf("Step %d.", c.Step)
	}
}

// Report is the result of running a scenario.
type Report struct {
	Name   string
	Digest string
	Final  int64
	Checks []Check
	Stats  archive.Stats
}

// Passed reports whether every check succeeded.
func (r *Report) Passed() bool {
	return len(r.Failures()) == 0
}

// Failures returns the checks that did not succeed.
func (r *Report) Failures() []Check {
	var failed []Check
	for _, c := range r.Checks {
		if !c.OK {
			failed = append(failed, c)
		}
	}
	return failed
}

// Run replays the scenario against a fresh archive. Failed expectations are
// recorded in the report; an error means the scenario itself is broken.
func Run(s *Scenario) (*Report, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	a := archive.NewNumeric(s.Initial)
	versions := make(map[string]archive.Version[int64])
	report := &Report{Name: s.Name, Digest: s.Digest}

	bind := func(name string, v archive.Version[int64]) {
		if name != "" {
			versions[name] = v
		}
	}
	lookup := func(step int, name string) (archive.Version[int64], error) {
		v, ok := versions[name]
		if !ok {
			return v, fmt.Errorf("step %d: unknown version %q", step, name)
		}
		return v, nil
	}

	for i, st := range s.Steps {
		n := i + 1
		switch st.Op {
		case OpIncrement:
			bind(st.Name, a.Increment(st.By))
		case OpSnapshot:
			bind(st.Name, a.Current())
		case OpReset:
			bind(st.Name, a.Reset(st.To))
		case OpClear:
			bind(st.Name, a.ClearHistory())

		case OpExpectValue:
			got := a.Value()
			report.Checks = append(report.Checks, Check{
				Step: n, Op: st.Op, Want: st.Want, Got: got, OK: got == st.Want,
			})

		case OpExpectDiff:
			v, err := lookup(n, st.Version)
			if err != nil {
				return nil, err
			}
			c := Check{Step: n, Op: st.Op, Version: st.Version, Want: st.Want}
			c.Got, err = archive.DiffToCurrent(v)
			if err != nil {
				c.Err = err.Error()
			}
			c.OK = err == nil && c.Got == c.Want
			report.Checks = append(report.Checks, c)

		case OpExpectInvalid:
			v, err := lookup(n, st.Version)
			if err != nil {
				return nil, err
			}
			c := Check{Step: n, Op: st.Op, Version: st.Version}
			c.Got, err = v.Diff()
			if err != nil {
				c.Err = err.Error()
			}
			c.OK = errors.Is(err, archive.ErrInvalidVersion)
			report.Checks = append(report.Checks, c)
		}
	}

	report.Final = a.Value()
	report.Stats = a.Stats()
	return report, nil
}

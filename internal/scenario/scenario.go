// Package scenario scripts sequences of archive operations and checks.
//
// A scenario is a TOML document listing steps (increments, snapshots,
// resets, expectations) that are replayed against an int64 archive. The
// built-in Smoke scenario exercises the whole archive contract.
package scenario

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/klauspost/compress/zstd"
	toml "github.com/pelletier/go-toml/v2"
	"lukechampine.com/blake3"
)

// ErrInvalidScenario is wrapped by every validation error.
var ErrInvalidScenario = errors.New("invalid scenario")

// Op names a scenario step.
type Op string

const (
	OpIncrement     Op = "increment"      // Increment by By; Name binds the new version
	OpSnapshot      Op = "snapshot"       // Bind Current() to Name
	OpReset         Op = "reset"          // Reset to To; Name binds the new version
	OpClear         Op = "clear"          // ClearHistory; Name binds the new version
	OpExpectValue   Op = "expect-value"   // Value() == Want
	OpExpectDiff    Op = "expect-diff"    // Diff of Version == Want
	OpExpectInvalid Op = "expect-invalid" // Diff of Version fails
)

// Step is one line of a scenario.
type Step struct {
	Op      Op     `toml:"op"`
	Name    string `toml:"name,omitempty"`
	Version string `toml:"version,omitempty"`
	By      int64  `toml:"by,omitempty"`
	To      int64  `toml:"to,omitempty"`
	Want    int64  `toml:"want,omitempty"`
}

// Scenario is a parsed scenario document.
type Scenario struct {
	Name    string `toml:"name"`
	Initial int64  `toml:"initial"`
	Steps   []Step `toml:"step"`

	Source string `toml:"-"` // File the scenario was loaded from
	Digest string `toml:"-"` // Hex BLAKE3-256 of the TOML text
}

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Parse decodes and validates a TOML scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.Digest = Digest(data)
	return &s, nil
}

// Load reads a scenario file. zstd-compressed files are decompressed
// transparently.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	if bytes.HasPrefix(data, zstdMagic) {
		data, err = decompress(data)
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Source = path
	return s, nil
}

// Digest returns the hex BLAKE3-256 of a scenario's TOML text.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Encode renders the scenario as TOML.
func Encode(s *Scenario) ([]byte, error) {
	data, err := toml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding scenario: %w", err)
	}
	return data, nil
}

// Write stores the scenario at path, zstd-compressed when path ends in .zst.
func Write(path string, s *Scenario) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, ".zst") {
		if data, err = compress(data); err != nil {
			return fmt.Errorf("compressing scenario: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks that every step is well formed and that versions are
// bound before they are referenced.
func (s *Scenario) Validate() error {
	bound := mapset.NewSet[string]()

	for i, st := range s.Steps {
		n := i + 1
		switch st.Op {
		case OpIncrement, OpReset, OpClear:
		case OpSnapshot:
			if st.Name == "" {
				return fmt.Errorf("%w: step %d: %s requires a name", ErrInvalidScenario, n, st.Op)
			}
		case OpExpectValue:
			if st.Name != "" {
				return fmt.Errorf("%w: step %d: %s does not take a name", ErrInvalidScenario, n, st.Op)
			}
		case OpExpectDiff, OpExpectInvalid:
			if st.Name != "" {
				return fmt.Errorf("%w: step %d: %s does not take a name", ErrInvalidScenario, n, st.Op)
			}
			if st.Version == "" {
				return fmt.Errorf("%w: step %d: %s requires a version", ErrInvalidScenario, n, st.Op)
			}
			if !bound.Contains(st.Version) {
				return fmt.Errorf("%w: step %d: version %q is not bound by an earlier step", ErrInvalidScenario, n, st.Version)
			}
		case "":
			return fmt.Errorf("%w: step %d: missing op", ErrInvalidScenario, n)
		default:
			return fmt.Errorf("%w: step %d: unknown op %q", ErrInvalidScenario, n, st.Op)
		}

		if st.Name != "" && !bound.Add(st.Name) {
			return fmt.Errorf("%w: step %d: version %q is bound twice", ErrInvalidScenario, n, st.Name)
		}
	}
	return nil
}

// Smoke returns the reference scenario: 13 incremented by 3, 4, 7, 9, 4,
// 5, 7 and 94 with a version taken before every increment and one at the
// end, followed by clear-history checks (value kept, every earlier version
// invalid) and reset checks.
func Smoke() *Scenario {
	increments := []int64{3, 4, 7, 9, 4, 5, 7, 94}
	s := &Scenario{Name: "smoke", Initial: 13}

	s.Steps = append(s.Steps,
		Step{Op: OpExpectValue, Want: 13},
		Step{Op: OpSnapshot, Name: "v0"},
	)
	values := []int64{s.Initial}
	for i, d := range increments {
		s.Steps = append(s.Steps, Step{Op: OpIncrement, By: d, Name: fmt.Sprintf("v%d", i+1)})
		values = append(values, values[i]+d)
	}

	final := values[len(values)-1]
	s.Steps = append(s.Steps, Step{Op: OpExpectValue, Want: final})
	for i, v := range values {
		s.Steps = append(s.Steps, Step{Op: OpExpectDiff, Version: fmt.Sprintf("v%d", i), Want: final - v})
	}

	s.Steps = append(s.Steps,
		Step{Op: OpClear, Name: "cleared"},
		Step{Op: OpExpectValue, Want: final},
	)
	for i := range values {
		s.Steps = append(s.Steps, Step{Op: OpExpectInvalid, Version: fmt.Sprintf("v%d", i)})
	}
	s.Steps = append(s.Steps,
		Step{Op: OpIncrement, By: 4},
		Step{Op: OpExpectDiff, Version: "cleared", Want: 4},
		Step{Op: OpReset, To: 2, Name: "reset"},
		Step{Op: OpExpectValue, Want: 2},
		Step{Op: OpExpectInvalid, Version: "cleared"},
		Step{Op: OpExpectDiff, Version: "reset", Want: 0},
	)
	return s
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

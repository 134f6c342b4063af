package summary

import (
	"fmt"
	"strings"
)

// Mode is the I/O strategy of the server under test.
type Mode int

const (
	Blocking Mode = iota
	NonBlocking
)

var Modes = []Mode{Blocking, NonBlocking}

func (m Mode) String() string {
	switch m {
	case Blocking:
		return "Blocking"
	case NonBlocking:
		return "Non-blocking"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "blocking", "block":
		return Blocking, nil
	case "non-blocking", "nonblocking", "nonblock", "non_blocking":
		return NonBlocking, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(m.String())), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Case is one I/O mode and payload size combination, with the artifacts
// the benchmark run left behind.
type Case struct {
	Label string `yaml:"label"`
	Mode  Mode   `yaml:"mode"`
	Size  string `yaml:"size"`
	Wrk   string `yaml:"wrk"`
	Dstat string `yaml:"dstat"`
}

// Paths returns the artifact paths of c, relative names resolved against
// dir. Unset artifacts are left out.
func (c Case) Paths(dir string) []string {
	var paths []string
	for _, name := range []string{c.Wrk, c.Dstat} {
		if name != "" {
			paths = append(paths, resolve(dir, name))
		}
	}
	return paths
}

// DefaultCases returns the four cases of the blocking vs non-blocking
// comparison, in table order.
func DefaultCases() []Case {
	return []Case{
		{Label: "Blocking 1KB", Mode: Blocking, Size: "1KB", Wrk: "block1kb.txt", Dstat: "block1kbop.csv"},
		{Label: "Non-blocking 1KB", Mode: NonBlocking, Size: "1KB", Wrk: "nonblock1kb.txt", Dstat: "nonblock1kbop.csv"},
		{Label: "Blocking 8KB", Mode: Blocking, Size: "8KB", Wrk: "block8kb.txt", Dstat: "block8kbop.csv"},
		{Label: "Non-blocking 8KB", Mode: NonBlocking, Size: "8KB", Wrk: "nonblock8kb.txt", Dstat: "nonblock8kbop.csv"},
	}
}

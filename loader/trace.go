// Package loader reads access traces that drive the two cores.
//
// A trace has one access per line:
//
//	<core> <R|W> <address> [value]
//
// where core is 0, 1, A or B. Stores need a value; loads must not have one.
// Numbers are decimal or 0x-prefixed hex. Text after '#' is ignored.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/duosim/timing/cache"
)

// Op is a single load or store issued by one core.
type Op struct {
	// Line is the 1-based line number the op was read from.
	Line    int
	Core    cache.CoreID
	Kind    cache.AccessKind
	Address uint64
	// Value is the stored value. Zero for loads.
	Value int32
}

func (o Op) String() string {
	if o.Kind == cache.AccessWrite {
		return fmt.Sprintf("%s W %d %d", o.Core, o.Address, o.Value)
	}
	return fmt.Sprintf("%s R %d", o.Core, o.Address)
}

// Trace is an ordered list of ops.
type Trace struct {
	Ops []Op
}

// Load parses the trace file at path.
func Load(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

// Parse reads a trace from r.
func Parse(r io.Reader) (*Trace, error) {
	trace := &Trace{}
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}

		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		op, err := parseOp(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		op.Line = lineNo

		trace.Ops = append(trace.Ops, op)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}

	return trace, nil
}

func parseOp(fields []string) (Op, error) {
	op := Op{}

	if len(fields) < 3 {
		return op, fmt.Errorf("expected <core> <R|W> <address> [value], got %q",
			strings.Join(fields, " "))
	}

	switch strings.ToUpper(fields[0]) {
	case "0", "A":
		op.Core = cache.CoreA
	case "1", "B":
		op.Core = cache.CoreB
	default:
		return op, fmt.Errorf("unknown core %q", fields[0])
	}

	switch strings.ToUpper(fields[1]) {
	case "R":
		op.Kind = cache.AccessRead
	case "W":
		op.Kind = cache.AccessWrite
	default:
		return op, fmt.Errorf("unknown access kind %q", fields[1])
	}

	addr, err := parseAddress(fields[2])
	if err != nil {
		return op, fmt.Errorf("bad address %q: %w", fields[2], err)
	}
	op.Address = addr

	switch {
	case op.Kind == cache.AccessRead && len(fields) != 3:
		return op, fmt.Errorf("load takes no value")
	case op.Kind == cache.AccessWrite && len(fields) != 4:
		return op, fmt.Errorf("store needs exactly one value")
	case op.Kind == cache.AccessWrite:
		value, err := parseValue(fields[3])
		if err != nil {
			return op, fmt.Errorf("bad value %q: %w", fields[3], err)
		}
		op.Value = value
	}

	return op, nil
}

// parseAddress accepts a decimal number or a 0x-prefixed hex number.
func parseAddress(s string) (uint64, error) {
	if hex, ok := cutHexPrefix(s); ok {
		return strconv.ParseUint(hex, 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

// parseValue is parseAddress for signed 32-bit values. The sign goes
// before the 0x prefix.
func parseValue(s string) (int32, error) {
	digits := s
	sign := ""
	if strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		sign, digits = digits[:1], digits[1:]
	}

	base := 10
	if hex, ok := cutHexPrefix(digits); ok {
		base, digits = 16, hex
	}

	v, err := strconv.ParseInt(sign+digits, base, 32)
	return int32(v), err
}

func cutHexPrefix(s string) (string, bool) {
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:], true
	}
	return "", false
}

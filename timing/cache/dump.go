package cache

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes the cache contents: one row per word position across all
// lines, then a row of tags and a row of states. Tags of Invalid lines are
// printed as "-".
func (c *DataCache) Dump(w io.Writer) error {
	rule := strings.Repeat("*", 73)

	lines := make([]Line, LineCount)
	for i := range lines {
		lines[i] = c.Line(i)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n%s\n", rule, c.name)

	for word := 0; word < WordsPerBlock; word++ {
		for _, line := range lines {
			fmt.Fprintf(&b, "%d\t\t", line.Words[word])
		}
		b.WriteString("\n")
	}

	for _, line := range lines {
		if line.State == Invalid {
			b.WriteString("-\t\t")
			continue
		}
		fmt.Fprintf(&b, "%d\t\t", line.Tag)
	}
	b.WriteString("\n")

	for _, line := range lines {
		fmt.Fprintf(&b, "%s\t\t", line.State)
	}
	fmt.Fprintf(&b, "\n%s\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}

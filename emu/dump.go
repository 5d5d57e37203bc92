package emu

import (
	"fmt"
	"io"
	"strings"
)

const dumpColumns = 16

// Dump writes the data space as an address/value table, 16 words per row.
// Addresses are byte addresses.
func (m *MainMemory) Dump(w io.Writer) error {
	rule := strings.Repeat("*", 73)

	if _, err := fmt.Fprintf(w, "\n%s\n", rule); err != nil {
		return err
	}

	words, err := m.load(m.data, 0, int(m.config.DataWords))
	if err != nil {
		return fmt.Errorf("failed to dump memory: %w", err)
	}

	for row := 0; row < len(words); row += dumpColumns {
		end := min(row+dumpColumns, len(words))

		var addrs, values strings.Builder
		for i := row; i < end; i++ {
			fmt.Fprintf(&addrs, "\t%d", i*WordBytes)
			fmt.Fprintf(&values, "\t%d", words[i])
		}

		if _, err := fmt.Fprintf(w, "Addr %s\nValue%s\n",
			addrs.String(), values.String()); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintf(w, "%s\n", rule)
	return err
}

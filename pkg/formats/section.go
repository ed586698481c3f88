// Package formats provides parsers for GTA Vice City asset file formats.
package formats

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
)

// Placement list errors.
var (
	ErrUnterminatedSection = errors.New("section not terminated before end of input")
)

// sectionEnd is the literal line that closes a section.
const sectionEnd = "end"

// CategoriseLines splits a placement-list text into sections. A section
// opens with a lowercase tag line and closes with a literal "end" line;
// the data lines in between are collected verbatim, in file order.
// Comment lines ("#" prefix) and blank lines are ignored everywhere.
// Unknown section tags are not an error; their lines are retained so
// future record categories stay an additive change.
func CategoriseLines(text string) (map[string][]string, error) {
	sections := make(map[string][]string)
	current := ""

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if current == "" {
			// Tag line opens a section.
			current = strings.ToLower(line)
			if _, ok := sections[current]; !ok {
				sections[current] = []string{}
			}
			continue
		}

		if strings.EqualFold(line, sectionEnd) {
			current = ""
			continue
		}

		sections[current] = append(sections[current], line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning placement list: %w", err)
	}

	if current != "" {
		return nil, fmt.Errorf("%w: section %q", ErrUnterminatedSection, current)
	}

	return sections, nil
}

// SplitLine splits one data line into its comma-separated fields,
// trimming surrounding whitespace and preserving field order.
func SplitLine(line string) []string {
	parts := strings.Split(line, ",")
	fields := make([]string, len(parts))
	for i, p := range parts {
		fields[i] = strings.TrimSpace(p)
	}
	return fields
}

package entities

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

const fileAttribute = "file"

// DiffRow is one line of a change-log comparison from the divergence point onward.
// An empty Devel or Release means that side has no entry at this position.
type DiffRow struct {
	Devel      string `json:"devel" yaml:"devel"`
	Release    string `json:"release" yaml:"release"`
	Superseded bool   `json:"superseded" yaml:"superseded"`
}

// ServiceDiff is the comparison result for a single service.
type ServiceDiff struct {
	Service string    `json:"service" yaml:"service"`
	Rows    []DiffRow `json:"rows" yaml:"rows"`
	Error   string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// migrationDiff carries the walk state between positions.
type migrationDiff struct {
	diverged bool
	seen     map[string]struct{}
	rows     []DiffRow
}

func (it *migrationDiff) step(devel, release string) {
	if devel == release && !it.diverged {
		return
	}
	it.diverged = true

	_, superseded := it.seen[devel]
	it.rows = append(it.rows, DiffRow{Devel: devel, Release: release, Superseded: superseded})

	if release != "" {
		it.seen[release] = struct{}{}
	}
}

// DiffMigrations compares two ordered migration sequences and returns the rows
// starting at the first index where they differ. Once diverged, every later
// position is emitted, padded with "" on the shorter side. A devel entry already
// seen on the release side after divergence is flagged as superseded.
func DiffMigrations(devel, release []string) []DiffRow {
	state := &migrationDiff{seen: make(map[string]struct{})}

	length := max(len(devel), len(release))
	for i := range length {
		state.step(at(devel, i), at(release, i))
	}

	return state.rows
}

func at(entries []string, i int) string {
	if i < len(entries) {
		return entries[i]
	}
	return ""
}

// ParseChangeLog extracts the ordered migration identifiers from a change-log
// document: the "file" attribute of every direct child of the root element.
func ParseChangeLog(document []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(document))

	depth := 0
	sawRoot := false
	var migrations []string

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedChangeLog, err)
		}

		switch element := token.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				sawRoot = true
				continue
			}
			if depth != 2 { //nolint:mnd // direct children of the root only
				continue
			}
			file, ok := attribute(element, fileAttribute)
			if !ok {
				return nil, fmt.Errorf("%w: element <%s> has no %q attribute",
					ErrMalformedChangeLog, element.Name.Local, fileAttribute)
			}
			migrations = append(migrations, file)
		case xml.EndElement:
			depth--
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("%w: document has no root element", ErrMalformedChangeLog)
	}
	return migrations, nil
}

func attribute(element xml.StartElement, name string) (string, bool) {
	for _, attr := range element.Attr {
		if attr.Name.Local == name {
			return attr.Value, true
		}
	}
	return "", false
}

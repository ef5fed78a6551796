package core

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const maxRosterEntries = 500

// ParseStudentRoster converts a YAML roster document into create inputs.
// Expected layout:
//
//	students:
//	  - first_name: Ada
//	    last_name: Lovelace
//	    class_number: 3
//
// Every entry must carry both names and a class number in 1..12; a single
// bad entry rejects the whole document, so nothing gets created from a
// roster that fails validation. Storage failures during the subsequent
// creates are the handler's problem and can leave earlier rows in place.
func ParseStudentRoster(data []byte) ([]StudentInput, error) {
	if len(data) == 0 {
		return nil, errors.New("roster is empty")
	}

	var doc struct {
		Students []StudentInput `yaml:"students"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid roster yaml: %w", err)
	}

	if len(doc.Students) == 0 {
		return nil, errors.New("roster contains no students")
	}
	if len(doc.Students) > maxRosterEntries {
		return nil, fmt.Errorf("roster exceeds %d entries", maxRosterEntries)
	}

	out := make([]StudentInput, 0, len(doc.Students))
	for i, s := range doc.Students {
		s.FirstName = strings.TrimSpace(s.FirstName)
		s.LastName = strings.TrimSpace(s.LastName)
		if s.FirstName == "" || s.LastName == "" {
			return nil, fmt.Errorf("entry %d: first_name and last_name are required", i+1)
		}
		if s.ClassNumber < 1 || s.ClassNumber > 12 {
			return nil, fmt.Errorf("entry %d: class_number must be between 1 and 12", i+1)
		}
		out = append(out, s)
	}
	return out, nil
}

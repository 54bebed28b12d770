package groups

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedRecord is returned when persisted group data cannot be decoded.
var ErrMalformedRecord = errors.New("malformed group record")

// Record is the persisted form of a Collection: group name to an ordered
// list of product ids.
type Record map[string][]string

// Encode converts every membership set into a sorted list.
func Encode(c Collection) Record {
	record := make(Record, c.Len())
	for name := range c.groups {
		members := c.Members(name)
		if members == nil {
			members = []string{}
		}
		record[name] = members
	}
	return record
}

// Decode converts lists back into sets. Duplicate ids collapse, blank group
// names are dropped and the default group is restored if missing.
func Decode(record Record) Collection {
	c := New()
	for name, ids := range record {
		name = strings.TrimSpace(name)
		if name == "" || name == AllProducts {
			continue
		}
		set := make(Set, len(ids))
		for _, id := range ids {
			if id != "" {
				set[id] = struct{}{}
			}
		}
		c.groups[name] = set
	}
	return c
}

// Marshal serialises a collection to JSON.
func Marshal(c Collection) ([]byte, error) {
	data, err := json.Marshal(Encode(c))
	if err != nil {
		return nil, fmt.Errorf("failed to encode groups: %w", err)
	}
	return data, nil
}

// Unmarshal parses JSON produced by Marshal.
func Unmarshal(data []byte) (Collection, error) {
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Collection{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if record == nil {
		return Collection{}, fmt.Errorf("%w: not an object", ErrMalformedRecord)
	}
	return Decode(record), nil
}

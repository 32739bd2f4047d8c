package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadArchiveMap reads the operator-provisioned year-to-spreadsheet
// lookup used for historical log partitions. The file is a flat YAML
// mapping:
//
//	2024: "1AbC...archive-2024-id"
//	2025: "1DeF...archive-2025-id"
//
// An empty path yields an empty map: no archives, live sheet only.
func LoadArchiveMap(path string) (map[int]string, error) {
	if path == "" {
		return map[int]string{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("archive map read: %w", err)
	}

	m := map[int]string{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("archive map parse: %w", err)
	}
	return m, nil
}

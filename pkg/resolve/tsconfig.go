package resolve

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kaptinlin/jsonrepair"
)

type tsconfig struct {
	CompilerOptions struct {
		BaseURL string          `json:"baseUrl"`
		Paths   json.RawMessage `json:"paths"`
	} `json:"compilerOptions"`
}

// LoadTSConfig reads compilerOptions.paths from a tsconfig.json and returns
// them as an alias table relative to projectRoot. Comments and trailing
// commas are tolerated. Key order of the paths object is preserved.
func LoadTSConfig(configPath, projectRoot string) ([]Alias, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read tsconfig: %w", err)
	}

	repaired, err := jsonrepair.JSONRepair(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to repair tsconfig %s: %w", configPath, err)
	}

	var cfg tsconfig
	if err := json.Unmarshal([]byte(repaired), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tsconfig %s: %w", configPath, err)
	}
	if len(cfg.CompilerOptions.Paths) == 0 {
		return nil, nil
	}

	base, err := configBase(configPath, projectRoot)
	if err != nil {
		return nil, err
	}
	base = resolveSegments(base, cfg.CompilerOptions.BaseURL)

	return decodePaths(cfg.CompilerOptions.Paths, base)
}

// configBase returns the tsconfig directory relative to projectRoot.
func configBase(configPath, projectRoot string) (string, error) {
	absConfig, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return "", err
	}
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absRoot, absConfig)
	if err != nil {
		return "", fmt.Errorf("tsconfig outside project root: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

func decodePaths(raw json.RawMessage, base string) ([]Alias, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("compilerOptions.paths must be an object")
	}

	var aliases []Alias
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read paths key: %w", err)
		}
		pattern, _ := tok.(string)

		var targets []string
		if err := dec.Decode(&targets); err != nil {
			return nil, fmt.Errorf("paths[%q]: %w", pattern, err)
		}
		for i, target := range targets {
			targets[i] = resolveSegments(base, target)
		}

		aliases = append(aliases, Alias{Pattern: pattern, Targets: targets})
	}
	return aliases, nil
}

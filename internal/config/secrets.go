package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// secrets is the deployment secret store: a flat YAML map of credential
// names to values, mounted by the platform. A key missing from the file
// falls back to the process environment variable of the same name.
type secrets map[string]string

func loadSecrets(path string) secrets {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var s secrets
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return s
}

func (s secrets) resolve(name string) string {
	if v, ok := s[name]; ok && v != "" {
		return v
	}
	return os.Getenv(name)
}

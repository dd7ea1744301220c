package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Server is one store the service can reach.
type Server struct {
	Name        string `yaml:"name" json:"name"`
	Url         string `yaml:"url" json:"url"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

type serversFile struct {
	Servers []Server `yaml:"servers"`
}

// DefaultServers is written on first run: one local store under the data directory.
func DefaultServers() []Server {
	return []Server{
		{Name: "local", Url: "duckdb://local.duckdb", Description: "Local store in the data directory"},
	}
}

// LoadServers reads the server registry, creating it with DefaultServers when missing.
func LoadServers(path string) ([]Server, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		servers := DefaultServers()
		if err := SaveServers(path, servers); err != nil {
			return nil, fmt.Errorf("failed to create default servers file: %w", err)
		}
		return servers, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read servers file: %w", err)
	}
	var file serversFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse servers file: %w", err)
	}
	if err := validateServers(file.Servers); err != nil {
		return nil, err
	}
	return file.Servers, nil
}

// SaveServers writes the server registry.
func SaveServers(path string, servers []Server) error {
	data, err := yaml.Marshal(serversFile{Servers: servers})
	if err != nil {
		return fmt.Errorf("failed to marshal servers: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func validateServers(servers []Server) error {
	seen := make(map[string]bool, len(servers))
	for i, s := range servers {
		if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Url) == "" {
			return fmt.Errorf("server %d: name and url are required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("server %q is defined twice", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

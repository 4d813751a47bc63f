package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultTemplate is written by 'sensordash init'.
const defaultTemplate = `# sensordash configuration
version: 1

api:
  # Sensor API base URL
  base_url: http://localhost:5000
  # Per-attempt HTTP timeout
  timeout: 10s
  # Failed requests are re-issued this many times
  retries: 3
  retry_delay: 1s

refresh:
  # Auto-refresh period for 'sensordash monitor'
  interval: 5s

history:
  # Samples kept per metric
  capacity: 100
  # Rows requested from /api/sensors/history
  limit: 100

output:
  color: auto # auto, always, never

session:
  file: ~/.config/sensordash/session.yaml

# Development backend ('sensordash serve')
server:
  addr: ":5000"
  password: admin123 # or ${NAME} to read it from the environment
  simulate: false
  simulate_interval: 5s
  mqtt:
    # Leave empty to disable MQTT ingestion
    broker: ""
    topic: greenhouse/sensors/+/data
    client_id: sensordash-server
`

// WriteDefault writes a commented default config to path. An existing file
// is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(defaultTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SetValue sets a dotted key (e.g. "api.base_url") in the config file to
// value. Missing intermediate mappings are created. It preserves the existing
// YAML structure and comments.
func SetValue(configPath, key, value string) error {
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("invalid key %q", key)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if root.Kind == 0 {
		// Empty file
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	node := root.Content[0]
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	for _, part := range parts[:len(parts)-1] {
		child := findMapValue(node, part)
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content, scalar(part), child)
		}
		if child.Kind != yaml.MappingNode {
			return fmt.Errorf("'%s' is not a section in config", part)
		}
		node = child
	}

	last := parts[len(parts)-1]
	if existing := findMapValue(node, last); existing != nil {
		if existing.Kind != yaml.ScalarNode {
			return fmt.Errorf("'%s' is a section, not a value", key)
		}
		existing.Value = value
		existing.Tag = ""
		existing.Style = 0
	} else {
		node.Content = append(node.Content, scalar(last), scalar(value))
	}

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	if err := os.WriteFile(configPath, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}

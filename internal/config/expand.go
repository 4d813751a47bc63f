package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// secretRef matches a value that is nothing but an environment reference.
var secretRef = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)\}$`)

// ExpandPath resolves $VAR and ${VAR} references and a leading ~ in p.
// Unset variables expand to the empty string. ~user is left alone.
func ExpandPath(p string) string {
	p = os.ExpandEnv(p)
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}

// ExpandSecret returns the named variable's value when s is exactly
// "${NAME}", so passwords can stay out of the config file. Any other value
// is returned unchanged, '$' characters included.
func ExpandSecret(s string) string {
	m := secretRef.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return s
	}
	return os.Getenv(m[1])
}

// expandConfig applies path and secret expansion to the fields that take it.
func expandConfig(cfg *Config) {
	cfg.Session.File = ExpandPath(cfg.Session.File)
	cfg.Server.Password = ExpandSecret(cfg.Server.Password)
	cfg.Server.MQTT.Password = ExpandSecret(cfg.Server.MQTT.Password)
}

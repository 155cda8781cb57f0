package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chainsight-io/chainsight/pkg/cserrors"
)

// Load reads a YAML file into the given configuration, substituting
// environment variable references first. Values already set on the
// configuration survive when the file omits their section, so loading over
// NewPipelineConfig keeps the defaults.
func Load(path string, config interface{}) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the --config flag
	if err != nil {
		return cserrors.Wrap(err, cserrors.ErrorTypeConfig, "failed to read config file").
			WithDetail("path", path)
	}

	content := substituteEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(content), config); err != nil {
		return cserrors.Wrap(err, cserrors.ErrorTypeConfig, "failed to parse config file").
			WithDetail("path", path)
	}
	return nil
}

// Save writes the configuration as YAML. The init command uses it to lay
// down a starting config file.
func Save(path string, config interface{}) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return cserrors.Wrap(err, cserrors.ErrorTypeConfig, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return cserrors.Wrap(err, cserrors.ErrorTypeConfig, "failed to write config file").
			WithDetail("path", path)
	}
	return nil
}

// substituteEnvVars expands ${VAR} and ${VAR:default} references. An unset
// variable resolves to its default, or to the empty string without one.
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		name := content[start+2 : end]
		fallback := ""
		if i := strings.Index(name, ":"); i != -1 {
			name, fallback = name[:i], name[i+1:]
		}

		value := os.Getenv(name)
		if value == "" {
			value = fallback
		}
		content = content[:start] + value + content[end+1:]
	}
	return content
}

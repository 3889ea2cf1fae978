package driver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the driver's optional file-based configuration, merged with CLI
// flags at the src/main.go edge (flags win). Grounded on
// sunholo-data-ailang/internal/eval_harness/spec.go's yaml.Unmarshal-backed
// loader; purely ambient — it configures the CLI binary, never the lowering
// semantics in src/lower.
type Config struct {
	// ModuleName names the LLIR module when the CLI does not derive one
	// from the input file name.
	ModuleName string `yaml:"module_name"`
	// Verbose enables printing the finished module's IR text to stdout in
	// addition to (or instead of) writing it to -o.
	Verbose bool `yaml:"verbose"`
}

// LoadConfig reads and parses a YAML config file at path. A missing file is
// not an error: it returns the zero Config, since every field has a usable
// default.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

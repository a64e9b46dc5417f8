// Package config implements the beanstalk.toml project/compiler-options
// file of SPEC_FULL.md §10 "Configuration files": target backend, linear
// memory page limits, and the host import manifest. Ported from the
// teacher's cmd/surge/project_manifest.go TOML-decode-plus-validate pattern
// (github.com/BurntSushi/toml), generalized from a package/run manifest to
// a compiler-options one.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nyejames/beanstalk-sub005/internal/hostreg"
)

// Backend selects which of C9/C10 produces the final artifact.
type Backend string

const (
	BackendWasm Backend = "wasm"
	BackendJS   Backend = "js"
)

// HostImport is one [[host_import]] table entry.
type HostImport struct {
	Module  string   `toml:"module"`
	Name    string   `toml:"name"`
	Params  []string `toml:"params"`
	Returns []string `toml:"returns"`
}

// Config is the decoded beanstalk.toml shape.
type Config struct {
	Backend         Backend      `toml:"backend"`
	MemoryPages     uint32       `toml:"memory_pages"`
	MaxDiagnostics  int          `toml:"max_diagnostics"`
	Pretty          bool         `toml:"pretty"`
	EmitLocations   bool         `toml:"emit_locations"`
	AutoInvokeStart bool         `toml:"auto_invoke_start"`
	HostImports     []HostImport `toml:"host_import"`
}

// Default returns the configuration used when no beanstalk.toml is present.
func Default() Config {
	return Config{
		Backend:         BackendWasm,
		MemoryPages:     1,
		MaxDiagnostics:  100,
		AutoInvokeStart: true,
	}
}

// Load decodes path as a beanstalk.toml file, validating the fields this
// core's pipeline depends on (an unknown backend would otherwise surface as
// a confusing failure several stages later).
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects a configuration this core cannot act on.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendWasm, BackendJS:
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendWasm, BackendJS)
	}
	if c.MemoryPages == 0 {
		return fmt.Errorf("memory_pages must be at least 1")
	}
	for _, hi := range c.HostImports {
		if strings.TrimSpace(hi.Module) == "" || strings.TrimSpace(hi.Name) == "" {
			return fmt.Errorf("host_import entries require both module and name")
		}
	}
	return nil
}

// Registry builds a hostreg.Registry from the configured host imports, in
// declaration order (spec.md §4.6: host imports precede every internal
// function in the emitted module).
func (c Config) Registry() (*hostreg.Registry, error) {
	reg := hostreg.NewRegistry()
	for _, hi := range c.HostImports {
		params, err := valueTypes(hi.Params)
		if err != nil {
			return nil, fmt.Errorf("host_import %s.%s: %w", hi.Module, hi.Name, err)
		}
		returns, err := valueTypes(hi.Returns)
		if err != nil {
			return nil, fmt.Errorf("host_import %s.%s: %w", hi.Module, hi.Name, err)
		}
		reg.Register(hostreg.Import{Module: hi.Module, Name: hi.Name, Params: params, Returns: returns})
	}
	return reg, nil
}

func valueTypes(names []string) ([]hostreg.ValueType, error) {
	out := make([]hostreg.ValueType, len(names))
	for i, n := range names {
		switch n {
		case "i32":
			out[i] = hostreg.I32
		case "i64":
			out[i] = hostreg.I64
		case "f32":
			out[i] = hostreg.F32
		case "f64":
			out[i] = hostreg.F64
		default:
			return nil, fmt.Errorf("unknown value type %q", n)
		}
	}
	return out, nil
}

// Package dump implements the driver's dump-hir/dump-lir debug
// artifacts and the test golden-artifact format (SPEC_FULL.md §10
// "Serialization"), grounded on the teacher's go.mod dependency on
// github.com/vmihailenco/msgpack/v5. This iteration adds no on-disk
// incremental build cache (spec.md's Non-goals exclude persistent caching);
// the dump format exists purely for diagnostics and golden-file comparison
// in tests, the same "inspect, don't resume from" role the teacher's own
// dump flags play.
package dump

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/nyejames/beanstalk-sub005/internal/hir"
	"github.com/nyejames/beanstalk-sub005/internal/lir"
)

// EncodeHIR serializes a HIR module for the dump-hir subcommand / golden-file tests.
func EncodeHIR(m *hir.Module) ([]byte, error) {
	return msgpack.Marshal(m)
}

// DecodeHIR reverses EncodeHIR.
func DecodeHIR(data []byte) (*hir.Module, error) {
	var m hir.Module
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("dump: decode HIR: %w", err)
	}
	return &m, nil
}

// EncodeLIR serializes a LIR module for the dump-lir subcommand / golden-file tests.
func EncodeLIR(m *lir.Module) ([]byte, error) {
	return msgpack.Marshal(m)
}

// DecodeLIR reverses EncodeLIR.
func DecodeLIR(data []byte) (*lir.Module, error) {
	var m lir.Module
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("dump: decode LIR: %w", err)
	}
	return &m, nil
}

// WriteFile writes already-encoded data to path; cmd/beanstalkc uses it for
// both LIR dumps and compiled artifacts.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("dump: write %s: %w", path, err)
	}
	return nil
}

// ReadFile reads path back for a golden-file comparison or a later pipeline
// stage that consumes a previously dumped module.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dump: read %s: %w", path, err)
	}
	return data, nil
}

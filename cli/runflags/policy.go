package runflags

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/colin-oos/lumen-sub000/pkg/storage"
	"gopkg.in/yaml.v3"
)

// PolicyEnv names the environment variable consulted for a policy file
// when -policy is not given.
const PolicyEnv = "LUMEN_POLICY"

// Policy is a YAML file of run settings.  Flags given on the command line
// take precedence over a policy.
type Policy struct {
	Deny        []string `yaml:"deny"`
	Mock        bool     `yaml:"mock"`
	Seed        string   `yaml:"seed"`
	MaxSteps    int      `yaml:"maxsteps"`
	RequireHash string   `yaml:"require-hash"`
}

// LoadPolicy reads a policy from path, which may be any storage URI.
// Unknown keys are an error so that a misspelled setting is not silently
// ignored.
func LoadPolicy(ctx context.Context, engine storage.Engine, path string) (*Policy, error) {
	u, err := storage.ParseURI(path)
	if err != nil {
		return nil, err
	}
	b, err := storage.Get(ctx, engine, u, maxPolicySize)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", path, err)
	}
	p, err := ParsePolicy(b)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", path, err)
	}
	return p, nil
}

const maxPolicySize = 1 << 20

func ParsePolicy(b []byte) (*Policy, error) {
	var p Policy
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if p.MaxSteps < 0 {
		return nil, errors.New("maxsteps must not be negative")
	}
	return &p, nil
}

package config

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// FileNames are looked up in the workspace root, first match wins.
var FileNames = []string{".beanls.yaml", ".beanls.yml", ".beanls.hcl"}

// Load reads the first settings file found in root. Without one it returns the
// defaults and an empty path.
func Load(ctx context.Context, fs afero.Fs, root string) (*Settings, string, error) {
	for _, name := range FileNames {
		path := filepath.Join(root, name)
		ok, err := afero.Exists(fs, path)
		if err != nil {
			return nil, "", errors.Errorf("checking for %s: %w", path, err)
		}
		if !ok {
			continue
		}

		cfg, err := LoadFile(fs, path)
		if err != nil {
			return nil, path, err
		}
		zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loaded settings file")
		return cfg, path, nil
	}

	zerolog.Ctx(ctx).Debug().Str("root", root).Msg("no settings file, using defaults")
	return Default(), "", nil
}

// 📝 Load settings from file (supports YAML and HCL)
func LoadFile(fs afero.Fs, path string) (*Settings, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg *Settings
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		cfg, err = decodeYAML(data)
	} else {
		cfg, err = decodeHCL(data, path)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("invalid settings in %s: %w", path, err)
	}
	return cfg, nil
}

func decodeYAML(data []byte) (*Settings, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return cfg, nil
}

func decodeHCL(data []byte, path string) (*Settings, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	cfg := Default()
	diags = gohcl.DecodeBody(hclFile.Body, ctx, cfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}
	return cfg, nil
}

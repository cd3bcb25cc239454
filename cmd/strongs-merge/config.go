package main

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/strongsdef/core/errors"
)

// configBase is the config file name, without extension, looked up next to
// the executable.
const configBase = "strongs-merge"

// configFiles lists candidate config files per format.
type configFiles struct {
	TOML []string
	YAML []string
}

func defaultConfigFiles(dir string) configFiles {
	return configFiles{
		TOML: []string{filepath.Join(dir, configBase+".toml")},
		YAML: []string{
			filepath.Join(dir, configBase+".yaml"),
			filepath.Join(dir, configBase+".yml"),
		},
	}
}

// tomlConfig is a kong.ConfigurationLoader for TOML files such as
//
//	dir = "/srv/bible"
//	dry_run = true
func tomlConfig(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := toml.NewDecoder(r).Decode(&values); err != nil {
		return nil, errors.NewParse("TOML", "", err)
	}
	return flagResolver(values), nil
}

// yamlConfig is a kong.ConfigurationLoader for YAML files.
func yamlConfig(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, errors.NewParse("YAML", "", err)
	}
	return flagResolver(values), nil
}

// flagResolver looks flags up by name, accepting either dashes or
// underscores ("dry-run" or "dry_run").
func flagResolver(values map[string]any) kong.Resolver {
	return kong.ResolverFunc(func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		for _, key := range []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")} {
			if v, ok := values[key]; ok {
				return v, nil
			}
		}
		return nil, nil
	})
}

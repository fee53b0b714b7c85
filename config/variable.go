package config

import (
	"fmt"
	"os"
	"strings"
)

type Variable struct {
	Name    string `hcl:"name,label"`
	Default string `hcl:"default,optional"`
	Secret  bool   `hcl:"secret,optional"`
	// Env names the environment variable consulted when vars.txt has no value.
	// Defaults to the upper-cased variable name.
	Env string `hcl:"env,optional"`
}

func (v *Variable) Validate() error {
	if v.Secret && v.Default != "" {
		return fmt.Errorf("Invalid secret; Secret variable '%s' cannot have a default value set in config", v.Name)
	}
	return nil
}

// EnvName returns the environment variable backing this variable
func (v *Variable) EnvName() string {
	if v.Env != "" {
		return v.Env
	}
	return strings.ToUpper(v.Name)
}

// resolveWith applies the resolution order vars.txt > environment > default
func resolveWith(v *Variable, fileVars map[string]string) string {
	if val, ok := fileVars[v.Name]; ok {
		return val
	}
	if val, ok := os.LookupEnv(v.EnvName()); ok && val != "" {
		return val
	}
	return v.Default
}

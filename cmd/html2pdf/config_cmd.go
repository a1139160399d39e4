package main

import (
	"github.com/alnah/go-html2pdf/internal/yamlutil"
)

const redacted = "[redacted]"

// runConfig prints the effective configuration as YAML.
func runConfig(args []string, env *Environment) error {
	f := &commonFlags{}
	fs := newFlagSet("config", env.Stderr, printConfigUsage)
	addCommonFlags(fs, f)
	if err := parse(fs, args); err != nil {
		return err
	}

	cfg, err := loadConfig(f.config, env)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret != "" {
		cfg.Auth.JWTSecret = redacted
	}

	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = env.Stdout.Write(out)
	return err
}

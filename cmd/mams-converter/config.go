package main

import (
	"errors"
	"path/filepath"
	"strings"
)

type Config struct {
	Dir        string
	Splits     string
	InputPath  string
	OutputPath string
	Verbose    bool
}

type conversion struct {
	In  string
	Out string
}

func (c Config) Validate() error {
	if c.InputPath != "" {
		return nil
	}
	if c.OutputPath != "" {
		return errors.New("-out requires -in")
	}
	if c.Dir == "" {
		return errors.New("missing -dir")
	}
	if len(c.splitNames()) == 0 {
		return errors.New("missing -splits")
	}
	return nil
}

// conversions lists the files to convert: the single -in file when given, otherwise
// MAMS_<split>.xml -> MAMS_<split>.raw in Dir for every split.
func (c Config) conversions() []conversion {
	if c.InputPath != "" {
		out := c.OutputPath
		if out == "" {
			out = strings.TrimSuffix(c.InputPath, filepath.Ext(c.InputPath)) + ".raw"
		}
		return []conversion{{In: c.InputPath, Out: out}}
	}
	var convs []conversion
	for _, s := range c.splitNames() {
		convs = append(convs, conversion{
			In:  filepath.Join(c.Dir, "MAMS_"+s+".xml"),
			Out: filepath.Join(c.Dir, "MAMS_"+s+".raw"),
		})
	}
	return convs
}

func (c Config) splitNames() []string {
	var out []string
	for _, s := range strings.Split(c.Splits, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func defaultConfig() Config {
	return Config{
		Dir:    filepath.FromSlash("data/mams"),
		Splits: "train,test",
	}
}

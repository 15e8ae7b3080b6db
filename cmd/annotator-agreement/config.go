package main

import (
	"errors"
	"path/filepath"

	"github.com/theimaginaryfoundation/reddit-absa/dataset"
)

type Config struct {
	Annotator1        string
	Annotator2        string
	LabelColumn       string
	AgreementsPath    string
	DisagreementsPath string
	ReportOnly        bool
	Verbose           bool
}

func (c Config) Validate() error {
	if c.Annotator1 == "" || c.Annotator2 == "" {
		return errors.New("missing -a or -b")
	}
	if c.Annotator1 == c.Annotator2 {
		return errors.New("-a and -b name the same file")
	}
	if c.LabelColumn == "" {
		return errors.New("missing -label-column")
	}
	if c.ReportOnly {
		return nil
	}
	if c.AgreementsPath == "" || c.DisagreementsPath == "" {
		return errors.New("missing -agreements or -disagreements")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Annotator1:        filepath.FromSlash("data/annotator_1.csv"),
		Annotator2:        filepath.FromSlash("data/annotator_2.csv"),
		LabelColumn:       dataset.ColPolarity,
		AgreementsPath:    filepath.FromSlash("data/agreements.csv"),
		DisagreementsPath: filepath.FromSlash("data/disagreements_to_fix.csv"),
	}
}

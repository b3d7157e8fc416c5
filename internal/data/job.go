package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// JobDef names a kind of job and the driver that executes it.
type JobDef struct {
	Name                  string
	Driver                string // key into the ai driver table
	ReportString          string
	Suspendable           bool // may be pushed back to the queue when interrupted
	CasualInterruptible   bool
	CheckOverrideOnExpire bool
}

type jobEntry struct {
	Name                  string `yaml:"name"`
	Driver                string `yaml:"driver"`
	ReportString          string `yaml:"report"`
	Suspendable           *bool  `yaml:"suspendable"`
	CasualInterruptible   *bool  `yaml:"casual_interruptible"`
	CheckOverrideOnExpire bool   `yaml:"check_override_on_expire"`
}

type jobListFile struct {
	Jobs []jobEntry `yaml:"jobs"`
}

// LoadJobDefs loads job definitions from YAML. Suspendable and
// casual_interruptible default to true when omitted.
func LoadJobDefs(path string) ([]*JobDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs: %w", err)
	}
	return parseJobDefs(raw)
}

func parseJobDefs(raw []byte) ([]*JobDef, error) {
	var f jobListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse jobs: %w", err)
	}
	defs := make([]*JobDef, 0, len(f.Jobs))
	for _, e := range f.Jobs {
		d := &JobDef{
			Name:                  e.Name,
			Driver:                e.Driver,
			ReportString:          e.ReportString,
			Suspendable:           true,
			CasualInterruptible:   true,
			CheckOverrideOnExpire: e.CheckOverrideOnExpire,
		}
		if d.Driver == "" {
			d.Driver = e.Name
		}
		if e.Suspendable != nil {
			d.Suspendable = *e.Suspendable
		}
		if e.CasualInterruptible != nil {
			d.CasualInterruptible = *e.CasualInterruptible
		}
		defs = append(defs, d)
	}
	return defs, nil
}

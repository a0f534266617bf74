// Package profile handles loading and formatting scoring profiles.
package profile

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/dshills/zellascore/internal/score"
	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Default is the profile used when none is requested.
const Default = "zella"

// Profile defines the partition rule, weights and threshold tables for scoring.
type Profile struct {
	Name          string            `yaml:"name"`
	Version       int               `yaml:"version"`
	Description   string            `yaml:"description"`
	Partition     score.Partition   `yaml:"partition"`
	Weights       score.Weights     `yaml:"weights"`
	RatioTable    []score.Threshold `yaml:"ratio_table"`
	RecoveryTable []score.Threshold `yaml:"recovery_table"`
}

// LoadBuiltin loads a built-in profile by name.
func LoadBuiltin(name string) (*Profile, error) {
	filename := name + ".yaml"
	data, err := builtinFS.ReadFile("builtin/" + filename)
	if err != nil {
		return nil, fmt.Errorf("profile.LoadBuiltin: unknown profile %q: %w", name, err)
	}
	p, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile.LoadBuiltin: parse %q: %w", name, err)
	}
	return p, nil
}

// LoadFile loads a profile from a YAML file. A missing name defaults to the file name.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile.LoadFile: %w", err)
	}
	p, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile.LoadFile: parse %q: %w", path, err)
	}
	if p.Name == "" {
		p.Name = path
	}
	return p, nil
}

func parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if p.Partition == "" {
		p.Partition = score.PartitionStrict
	}
	return &p, nil
}

// List returns the names of all available built-in profiles.
func List() ([]string, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if strings.HasSuffix(n, ".yaml") {
			names = append(names, strings.TrimSuffix(n, ".yaml"))
		}
	}
	return names, nil
}

// Options converts the profile into engine options.
func (p *Profile) Options() score.Options {
	return score.Options{
		Partition:     p.Partition,
		Weights:       p.Weights,
		RatioTable:    p.RatioTable,
		RecoveryTable: p.RecoveryTable,
	}
}

// Format renders the profile as plain text for the profiles command.
func Format(p *Profile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (v%d, %s partition)\n", p.Name, p.Version, p.Partition)
	if p.Description != "" {
		fmt.Fprintf(&b, "  %s\n", strings.TrimSpace(p.Description))
	}

	w := p.Weights
	b.WriteString("  weights:\n")
	fmt.Fprintf(&b, "    recovery factor %.2f\n", w.RecoveryFactor)
	fmt.Fprintf(&b, "    win rate        %.2f\n", w.WinRate)
	fmt.Fprintf(&b, "    avg win/loss    %.2f\n", w.AvgWinLoss)
	fmt.Fprintf(&b, "    profit factor   %.2f\n", w.ProfitFactor)
	fmt.Fprintf(&b, "    max drawdown    %.2f\n", w.MaxDrawdown)
	fmt.Fprintf(&b, "    consistency     %.2f\n", w.Consistency)

	renderTable(&b, "ratio table", p.RatioTable)
	renderTable(&b, "recovery table", p.RecoveryTable)
	return b.String()
}

func renderTable(b *strings.Builder, title string, table []score.Threshold) {
	if len(table) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s:\n", title)
	for _, th := range table {
		fmt.Fprintf(b, "    >= %-4g -> %g\n", th.Min, th.Score)
	}
}

package units

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyRoster is returned when a roster declares no units.
	ErrEmptyRoster = errors.New("roster has no units")
	// ErrDuplicateID is returned when two roster entries share an id.
	ErrDuplicateID = errors.New("duplicate unit id")
)

// rosterFile is the on-disk layout:
//
//	units:
//	  - id: skacal
//	    name: Skacal
//	    locked: false
type rosterFile struct {
	Units []Def `yaml:"units"`
}

// LoadRoster decodes a YAML roster. Entries without an id are allowed and get
// one at spawn time.
func LoadRoster(r io.Reader) ([]Def, error) {
	var rf rosterFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyRoster
		}
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	if err := ValidateRoster(rf.Units); err != nil {
		return nil, err
	}
	return rf.Units, nil
}

// LoadRosterFile reads a YAML roster from disk.
func LoadRosterFile(path string) ([]Def, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	defs, err := LoadRoster(f)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return defs, nil
}

// ValidateRoster rejects empty rosters and repeated ids.
func ValidateRoster(defs []Def) error {
	if len(defs) == 0 {
		return ErrEmptyRoster
	}
	seen := make(map[ID]bool, len(defs))
	for _, d := range defs {
		if d.ID == "" {
			continue
		}
		if seen[d.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateID, d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}

// DefaultRoster returns the built-in squad: five known developers and two
// hidden recruits waiting to be found.
func DefaultRoster() []Def {
	return []Def{
		{
			ID: "skacal", Name: "Skacal", Role: "Tech Director", Color: "#e11d48",
			Model: "assets/3D/model_s3.glb",
			Stats: []Stat{
				{"Roll Forward Tech", 95}, {"UNITY", 70}, {"Server", 90},
				{"Live Operations", 99}, {"AYCE Sushi", 80},
			},
		},
		{
			ID: "ramon", Name: "Ramon", Role: "Principal Engineer", Color: "#22c55e",
			Model: "assets/3D/model_r2.glb",
			Stats: []Stat{
				{"Office Space", 15}, {"Canadian", 85}, {"Gameplay", 99},
				{"UNITY", 89}, {"Pineapple Pizza", 65},
			},
		},
		{
			ID: "david", Name: "David", Role: "Game Director", Color: "#3b82f6",
			Model: "assets/3D/model_d1.glb",
			Stats: []Stat{
				{"Design", 92}, {"Balance", 99}, {"Top Ace", 90},
				{"n00b", 95}, {"Politics", 2},
			},
		},
		{
			ID: "gavin", Name: "Gavin", Role: "Principal 3D Artist", Color: "#a855f7",
			Model: "assets/3D/model_g4.glb",
			Stats: []Stat{
				{"Writing", 70}, {"Sass", 10}, {"Pipeline", 60},
				{"Content Design", 50}, {"3D Art", 90},
			},
		},
		{
			ID: "cuevas", Name: "Cuevas", Role: "Art Director", Color: "#f59e0b",
			Model: "assets/3D/model_c5.glb",
			Stats: []Stat{
				{"Kalguksu", 15}, {"Sleep", 30}, {"Tech Art", 85},
				{"Animation", 95}, {"VFX", 80},
			},
		},
		{
			ID: "unknown_1", Name: "REDACTED", Role: "Sound & Audio", Color: "#a855f7",
			Stats:  []Stat{{"Decibels", 100}, {"Synth Design", 90}, {"Secrecy", 100}},
			Locked: true,
		},
		{
			ID: "unknown_2", Name: "REDACTED", Role: "Level Designer", Color: "#f59e0b",
			Stats:  []Stat{{"Layout", 88}, {"Lighting", 80}, {"Access", 0}},
			Locked: true,
		},
	}
}

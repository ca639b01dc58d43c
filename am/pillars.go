package am

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teranos/dex/logger"
)

// Pillar is a strategic focus area tasks are classified into
type Pillar struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Keywords    []string `yaml:"keywords" json:"keywords"`
}

// PriorityLimits maps a priority tier (P0..P3) to its maximum number of active tasks.
// Tiers absent from the map are unconstrained.
type PriorityLimits map[string]int

// Limit returns the ceiling for tier and whether one is configured
func (l PriorityLimits) Limit(tier string) (int, bool) {
	n, ok := l[tier]
	return n, ok
}

// Strategy is the parsed System/pillars.yaml document
type Strategy struct {
	Pillars []Pillar       `json:"pillars"`
	Limits  PriorityLimits `json:"priority_limits"`
	// Source is the file the pillars came from, empty when defaults are in use
	Source string `json:"source,omitempty"`
}

type strategyFile struct {
	Pillars        []Pillar       `yaml:"pillars"`
	PriorityLimits map[string]int `yaml:"priority_limits"`
}

// DefaultPillars are used whenever pillars.yaml is absent, unparsable or lists no pillars
func DefaultPillars() []Pillar {
	return []Pillar{
		{ID: "pillar_1", Name: "Pillar 1", Description: "Your first strategic focus area", Keywords: []string{"focus", "priority", "main"}},
		{ID: "pillar_2", Name: "Pillar 2", Description: "Your second strategic focus area", Keywords: []string{"secondary", "support"}},
		{ID: "pillar_3", Name: "Pillar 3", Description: "Your third strategic focus area", Keywords: []string{"growth", "learning"}},
	}
}

// DefaultPriorityLimits returns the WIP ceilings used when none are configured
func DefaultPriorityLimits() PriorityLimits {
	return PriorityLimits{"P0": 3, "P1": 5, "P2": 10}
}

// DefaultStrategy combines DefaultPillars and DefaultPriorityLimits
func DefaultStrategy() *Strategy {
	return &Strategy{Pillars: DefaultPillars(), Limits: DefaultPriorityLimits()}
}

// LoadPillars reads the strategy document at path. It never fails: a missing,
// unreadable or empty document falls back to the defaults, piecewise.
func LoadPillars(path string) *Strategy {
	log := logger.ComponentLogger("am")

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnw("Cannot read pillars file, using defaults", logger.FieldFile, path, logger.FieldError, err)
		} else {
			log.Debugw("No pillars file, using defaults", logger.FieldFile, path)
		}
		return DefaultStrategy()
	}
	return ParseStrategy(path, data)
}

// ParseStrategy parses pillars.yaml content; source is recorded for reporting only.
func ParseStrategy(source string, data []byte) *Strategy {
	log := logger.ComponentLogger("am")

	var doc strategyFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		log.Warnw("Unparsable pillars file, using defaults", logger.FieldFile, source, logger.FieldError, err)
		return DefaultStrategy()
	}

	s := &Strategy{Limits: parseLimits(doc.PriorityLimits)}

	seen := make(map[string]bool)
	for _, p := range doc.Pillars {
		if p.ID == "" {
			p.ID = "pillar_" + strconv.Itoa(len(s.Pillars)+1)
		}
		if seen[p.ID] {
			log.Warnw("Duplicate pillar id ignored", logger.FieldPillar, p.ID, logger.FieldFile, source)
			continue
		}
		seen[p.ID] = true
		if p.Name == "" {
			p.Name = p.ID
		}
		kw := make([]string, 0, len(p.Keywords))
		for _, k := range p.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kw = append(kw, k)
			}
		}
		p.Keywords = kw
		s.Pillars = append(s.Pillars, p)
	}

	if len(s.Pillars) == 0 {
		log.Warnw("No pillars in file, using defaults", logger.FieldFile, source)
		s.Pillars = DefaultPillars()
		return s
	}

	s.Source = source
	log.Debugw("Loaded pillars", logger.FieldFile, source, logger.FieldCount, len(s.Pillars))
	return s
}

// parseLimits overlays configured tiers on the defaults. Negative values are ignored;
// 0 is a valid ceiling (the tier is closed).
func parseLimits(raw map[string]int) PriorityLimits {
	limits := DefaultPriorityLimits()
	for tier, n := range raw {
		tier = strings.ToUpper(strings.TrimSpace(tier))
		switch tier {
		case "P0", "P1", "P2", "P3":
		default:
			continue
		}
		if n < 0 {
			continue
		}
		limits[tier] = n
	}
	return limits
}

// IDs returns pillar ids in configuration order
func (s *Strategy) IDs() []string {
	ids := make([]string, len(s.Pillars))
	for i, p := range s.Pillars {
		ids[i] = p.ID
	}
	return ids
}

// Pillar looks a pillar up by id or by name (case-insensitive)
func (s *Strategy) Pillar(idOrName string) (Pillar, bool) {
	want := strings.TrimSpace(idOrName)
	for _, p := range s.Pillars {
		if p.ID == want {
			return p, true
		}
	}
	for _, p := range s.Pillars {
		if strings.EqualFold(p.Name, want) || strings.EqualFold(p.ID, want) {
			return p, true
		}
	}
	return Pillar{}, false
}

// PillarName returns the display name for id, or id itself when unknown
func (s *Strategy) PillarName(id string) string {
	if p, ok := s.Pillar(id); ok {
		return p.Name
	}
	return id
}

// LimitTiers returns the configured tiers in priority order
func (s *Strategy) LimitTiers() []string {
	tiers := make([]string, 0, len(s.Limits))
	for t := range s.Limits {
		tiers = append(tiers, t)
	}
	sort.Strings(tiers)
	return tiers
}

package provenance

import (
	"fmt"
	"strings"
	"time"
)

// Graph is the serializable lineage record of one run, structured as
// entities, activities, and agents with the ordered event sequence linking
// them. Immutable once built.
type Graph struct {
	RunID       string         `json:"run_id"`
	CreatedAt   time.Time      `json:"created_at"`
	FinalizedAt time.Time      `json:"finalized_at"`
	Source      *SourceInfo    `json:"dataset_source,omitempty"`
	Curator     *Curator       `json:"curator,omitempty"`
	Environment *Environment   `json:"environment,omitempty"`
	Entities    []string       `json:"entities"`
	Activities  []string       `json:"activities"`
	Agents      []string       `json:"agents"`
	Events      []Event        `json:"events"`
	Checks      []QualityCheck `json:"quality_checks,omitempty"`
	Notes       []Note         `json:"notes,omitempty"`
}

// buildGraph assembles the graph from a finalized log. Entity, activity,
// and agent lists are deduplicated in first-use order.
func buildGraph(l *Log) *Graph {
	g := &Graph{
		RunID:       l.runID,
		CreatedAt:   l.createdAt,
		FinalizedAt: time.Now(),
		Source:      l.source,
		Curator:     l.curator,
		Environment: l.environment,
		Events:      append([]Event(nil), l.events...),
		Checks:      append([]QualityCheck(nil), l.checks...),
		Notes:       append([]Note(nil), l.notes...),
	}

	seenEntity := make(map[string]struct{})
	seenActivity := make(map[string]struct{})
	seenAgent := make(map[string]struct{})
	for _, ev := range g.Events {
		if _, ok := seenEntity[ev.Entity]; !ok {
			seenEntity[ev.Entity] = struct{}{}
			g.Entities = append(g.Entities, ev.Entity)
		}
		if _, ok := seenActivity[ev.Activity]; !ok {
			seenActivity[ev.Activity] = struct{}{}
			g.Activities = append(g.Activities, ev.Activity)
		}
		if _, ok := seenAgent[ev.Agent]; !ok {
			seenAgent[ev.Agent] = struct{}{}
			g.Agents = append(g.Agents, ev.Agent)
		}
	}

	return g
}

// Summary renders a human-readable provenance digest for the text export.
func (g *Graph) Summary() string {
	var b strings.Builder
	line := strings.Repeat("=", 70)

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "PROVENANCE SUMMARY")
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Run: %s\n", g.RunID)
	fmt.Fprintf(&b, "Created: %s\n", g.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Finalized: %s\n\n", g.FinalizedAt.Format(time.RFC3339))

	if g.Source != nil {
		fmt.Fprintln(&b, "DATASET SOURCE")
		fmt.Fprintf(&b, "  Title: %s\n", g.Source.Title)
		fmt.Fprintf(&b, "  URL: %s\n", g.Source.SourceURL)
		if g.Source.DOI != "" {
			fmt.Fprintf(&b, "  DOI: %s\n", g.Source.DOI)
		}
		fmt.Fprintf(&b, "  License: %s\n\n", g.Source.License)
	}

	if g.Curator != nil {
		fmt.Fprintln(&b, "CURATOR")
		fmt.Fprintf(&b, "  Name: %s\n", g.Curator.Name)
		if g.Curator.Institution != "" {
			fmt.Fprintf(&b, "  Institution: %s\n", g.Curator.Institution)
		}
		fmt.Fprintln(&b)
	}

	fmt.Fprintf(&b, "LINEAGE (%d events)\n", len(g.Events))
	for _, ev := range g.Events {
		fmt.Fprintf(&b, "  %d. %s: %s -> %s (%s)\n",
			ev.Seq, ev.Agent, ev.Activity, ev.Entity, ev.Timestamp.Format(time.RFC3339))
	}

	if len(g.Checks) > 0 {
		passed := 0
		for _, c := range g.Checks {
			if c.Passed {
				passed++
			}
		}
		fmt.Fprintf(&b, "\nQUALITY CHECKS: %d/%d passed\n", passed, len(g.Checks))
	}

	for _, n := range g.Notes {
		fmt.Fprintf(&b, "\nNOTE [%s]: %s\n", n.Category, n.Text)
	}

	fmt.Fprintln(&b, line)
	return b.String()
}

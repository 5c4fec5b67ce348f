// Package report renders comparison results into the persisted JSON
// document, a markdown table, and HTML.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/bmcnally/sasadiff/internal/sasa"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Entry is one differing node: its identity plus the combined area.
type Entry struct {
	UID string `json:"uid"`
	sasa.Area
}

// Report is a persisted comparison between two stored trees.
type Report struct {
	ID        string    `json:"report_id"`
	BaseID    string    `json:"base_id"`
	VariantID string    `json:"variant_id"`
	Kind      string    `json:"kind"`
	Epsilon   float64   `json:"epsilon"`
	CreatedAt time.Time `json:"created_at"`
	Entries   []Entry   `json:"entries"`
}

// New builds a report from comparator output. Nodes are expected to be
// sorted already; order is preserved.
func New(id, baseID, variantID string, kind sasa.Kind, epsilon float64, nodes []sasa.Node) Report {
	r := Report{
		ID:        id,
		BaseID:    baseID,
		VariantID: variantID,
		Kind:      kind.String(),
		Epsilon:   epsilon,
		CreatedAt: time.Now().UTC(),
		Entries:   make([]Entry, 0, len(nodes)),
	}
	for _, n := range nodes {
		if n.UID == nil || n.Area == nil {
			continue
		}
		r.Entries = append(r.Entries, Entry{UID: n.UID.String(), Area: *n.Area})
	}
	return r
}

// Markdown renders the report as a GFM document with one table row per entry.
func (r Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# SASA comparison %s\n\n", r.ID)
	fmt.Fprintf(&b, "Base `%s` vs variant `%s` at %s level, epsilon %g. %d differing node(s).\n\n",
		r.BaseID, r.VariantID, r.Kind, r.Epsilon, len(r.Entries))
	b.WriteString("| UID | Total | Main chain | Side chain | Polar | Apolar |\n")
	b.WriteString("|-----|-------|------------|------------|-------|--------|\n")
	for _, e := range r.Entries {
		fmt.Fprintf(&b, "| %s | %.4f | %.4f | %.4f | %.4f | %.4f |\n",
			e.UID, e.Total, e.MainChain, e.SideChain, e.Polar, e.Apolar)
	}
	return b.String()
}

// HTML renders the markdown report to HTML.
func (r Report) HTML() ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(r.Markdown()), &buf); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}
	return buf.Bytes(), nil
}

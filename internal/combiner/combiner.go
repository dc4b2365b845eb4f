// Package combiner merges per-chunk results into one summary and
// renders it as markdown.
package combiner

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nguyentantai21042004/digest-flow/internal/memory"
	"github.com/nguyentantai21042004/digest-flow/internal/summary"
)

const (
	headingOverview  = "## 全体の要約"
	headingKeyPoints = "## 主要ポイント"
	headingFlow      = "## 文脈の流れ"

	labelRelation   = "前との関係"
	labelContinuing = "継続トピック"
	labelNew        = "新規トピック"
)

// Combine merges results in order. Key points keep the first entry for
// each title; later duplicates are dropped.
func Combine(results []summary.ChunkResult) (summary.CombinedSummary, error) {
	if len(results) == 0 {
		return summary.CombinedSummary{}, summary.ErrNoValidResults
	}

	var (
		out       summary.CombinedSummary
		overviews []string
		seen      = make(map[string]struct{})
	)

	for i, r := range results {
		if o := strings.TrimSpace(r.Overview); o != "" {
			overviews = append(overviews, o)
		}

		for _, p := range r.KeyPoints {
			if _, dup := seen[p.Title]; dup {
				continue
			}
			seen[p.Title] = struct{}{}
			out.KeyPoints = append(out.KeyPoints, p)
		}

		links := r.ContextLinks
		out.ContextFlow = append(out.ContextFlow, summary.FlowEntry{
			Label:            fmt.Sprintf("セクション %d", i+1),
			Relation:         strings.TrimSpace(links.RelationToPrevious),
			ContinuingTopics: memory.Dedupe(links.ContinuingTopics),
			NewTopics:        memory.Dedupe(links.NewTopics),
		})
	}

	out.Overview = strings.Join(overviews, " ")
	return out, nil
}

// Format renders s as headed markdown. Key points are listed by
// importance, highest first, keeping merge order among equals.
func Format(s summary.CombinedSummary) string {
	var sb strings.Builder

	sb.WriteString(headingOverview + "\n\n")
	sb.WriteString(s.Overview)
	sb.WriteString("\n")

	if len(s.KeyPoints) > 0 {
		ranked := slices.Clone(s.KeyPoints)
		slices.SortStableFunc(ranked, func(a, b summary.KeyPoint) int {
			return int(b.Importance) - int(a.Importance)
		})

		sb.WriteString("\n" + headingKeyPoints + "\n")
		for i, p := range ranked {
			fmt.Fprintf(&sb, "\n### %d. %s %s\n", i+1, p.Title, Stars(p.Importance))
			if d := strings.TrimSpace(p.Description); d != "" {
				sb.WriteString(d)
				sb.WriteString("\n")
			}
		}
	}

	if len(s.ContextFlow) > 0 {
		sb.WriteString("\n" + headingFlow + "\n")
		for _, f := range s.ContextFlow {
			fmt.Fprintf(&sb, "\n### %s\n", f.Label)
			if f.Relation != "" {
				fmt.Fprintf(&sb, "- %s: %s\n", labelRelation, f.Relation)
			}
			if len(f.ContinuingTopics) > 0 {
				fmt.Fprintf(&sb, "- %s: %s\n", labelContinuing, strings.Join(f.ContinuingTopics, ", "))
			}
			if len(f.NewTopics) > 0 {
				fmt.Fprintf(&sb, "- %s: %s\n", labelNew, strings.Join(f.NewTopics, ", "))
			}
		}
	}

	return sb.String()
}

// Stars renders importance as filled and empty stars out of five.
func Stars(importance summary.Importance) string {
	n := int(summary.ClampImportance(int(importance)))
	return strings.Repeat("★", n) + strings.Repeat("☆", summary.MaxImportance-n)
}

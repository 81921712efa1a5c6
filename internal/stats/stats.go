// Package stats builds the admin usage report.
package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/khalsirati/helperbot/internal/config"
	"github.com/khalsirati/helperbot/internal/database"
	"github.com/khalsirati/helperbot/internal/menu"
)

// Store is the read side the report needs.
type Store interface {
	GetUsageCounts(ctx context.Context) (*database.UsageCounts, error)
	CountUnreplied(ctx context.Context) (int, error)
}

// CategoryCount is the total and today count for one catalog entry.
type CategoryCount struct {
	Name  string
	Total int
	Today int
}

// Report is a snapshot of bot usage.
type Report struct {
	TotalStarts       int
	TodayStarts       int
	TotalInteractions int
	TodayInteractions int
	Social            []CategoryCount
	Promo             []CategoryCount
	Unread            int
}

// Aggregator computes reports from the store and the catalog.
type Aggregator struct {
	store   Store
	catalog *menu.Catalog
}

// NewAggregator creates an Aggregator.
func NewAggregator(store Store, catalog *menu.Catalog) *Aggregator {
	return &Aggregator{store: store, catalog: catalog}
}

// Collect reads the counters. Every configured entry appears in the report,
// with zero counts when nobody pressed it; names found only in the database
// (entries removed from the config) follow in alphabetical order.
func (a *Aggregator) Collect(ctx context.Context) (*Report, error) {
	counts, err := a.store.GetUsageCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect usage counts: %w", err)
	}
	unread, err := a.store.CountUnreplied(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect unread count: %w", err)
	}

	return &Report{
		TotalStarts:       counts.TotalStarts,
		TodayStarts:       counts.TodayStarts,
		TotalInteractions: counts.TotalInteractions,
		TodayInteractions: counts.TodayInteractions,
		Social:            merge(a.catalog.Names(menu.KindSocial), counts.SocialTotal, counts.SocialToday),
		Promo:             merge(a.catalog.Names(menu.KindPromo), counts.PromoTotal, counts.PromoToday),
		Unread:            unread,
	}, nil
}

func merge(names []string, total, today map[string]int) []CategoryCount {
	out := make([]CategoryCount, 0, len(names)+len(total))
	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
		out = append(out, CategoryCount{Name: n, Total: total[n], Today: today[n]})
	}

	var extra []string
	for n := range total {
		if _, ok := known[n]; !ok {
			extra = append(extra, n)
		}
	}
	sort.Strings(extra)
	for _, n := range extra {
		out = append(out, CategoryCount{Name: n, Total: total[n], Today: today[n]})
	}
	return out
}

// Format renders the report as plain text using the configured labels.
func (r *Report) Format(l config.StatsMessages) string {
	var sb strings.Builder
	sb.WriteString(l.Title + "\n")
	fmt.Fprintf(&sb, l.TotalStarts+"\n", r.TotalStarts)
	fmt.Fprintf(&sb, l.TodayStarts+"\n", r.TodayStarts)
	fmt.Fprintf(&sb, l.TotalInteractions+"\n", r.TotalInteractions)
	fmt.Fprintf(&sb, l.TodayInteractions+"\n", r.TodayInteractions)

	sb.WriteString("\n" + l.SocialHeader + "\n")
	writeCategories(&sb, l.CategoryLine, r.Social)
	sb.WriteString("\n" + l.PromoHeader + "\n")
	writeCategories(&sb, l.CategoryLine, r.Promo)

	fmt.Fprintf(&sb, "\n"+l.Unread, r.Unread)
	return sb.String()
}

func writeCategories(sb *strings.Builder, line string, counts []CategoryCount) {
	for _, c := range counts {
		fmt.Fprintf(sb, line+"\n", c.Name, c.Total, c.Today)
	}
}

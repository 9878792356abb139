// Package view derives everything the shopping-list page shows from one
// fetched snapshot of items plus the client-side search and collapse state.
// Nothing here touches storage; the page refetches the whole collection after
// every mutation and calls Build again.
package view

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/sakif/shopping-list/internal/model"
)

// Stats summarises the whole snapshot, independent of the search query.
type Stats struct {
	TotalItems         int
	CompletedItems     int
	ProgressPercentage int
	ProgressText       string
}

// Section is one visible category with its (filtered) items.
type Section struct {
	Category  model.Category
	Items     []model.Item
	Collapsed bool
}

// Page is the full render model for the list page.
type Page struct {
	Query      string
	Collapsed  Collapsed
	Sections   []Section
	Stats      Stats
	Empty      bool
	EmptyTitle string
	EmptyHint  string
}

// Filter keeps items whose name contains query, case-insensitively.
// A blank query keeps everything.
func Filter(items []model.Item, query string) []model.Item {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}
	out := make([]model.Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), q) {
			out = append(out, item)
		}
	}
	return out
}

// GroupByCategory buckets items by category key in catalogue order. Every
// catalogue category gets an entry, possibly empty. Items with a key outside
// the catalogue are dropped.
func GroupByCategory(items []model.Item) []Section {
	byKey := make(map[string][]model.Item, len(model.Categories))
	for _, item := range items {
		byKey[item.Category] = append(byKey[item.Category], item)
	}
	sections := make([]Section, 0, len(model.Categories))
	for _, c := range model.Categories {
		sections = append(sections, Section{Category: c, Items: byKey[c.Key]})
	}
	return sections
}

// ComputeStats counts items and rounds the completion percentage to the
// nearest integer. An empty list is 0%.
func ComputeStats(items []model.Item) Stats {
	s := Stats{TotalItems: len(items)}
	for _, item := range items {
		if item.Completed {
			s.CompletedItems++
		}
	}
	s.ProgressPercentage = Percentage(s.CompletedItems, s.TotalItems)
	s.ProgressText = fmt.Sprintf("%d%% Complete", s.ProgressPercentage)
	return s
}

// Percentage is round(completed/total*100), or 0 when total is 0.
func Percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// Build assembles the page. Sections without items are omitted.
// Items whose category is outside the catalogue count towards Empty and the
// stats but belong to no section, so a list holding only such items renders
// neither sections nor the empty state. This is intended.
func Build(items []model.Item, query string, collapsed Collapsed) Page {
	filtered := Filter(items, query)
	searching := strings.TrimSpace(query) != ""

	p := Page{
		Query:     query,
		Collapsed: collapsed,
		Stats:     ComputeStats(items),
		Empty:     len(filtered) == 0,
	}

	for _, s := range GroupByCategory(filtered) {
		if len(s.Items) == 0 {
			continue
		}
		s.Collapsed = collapsed.Has(s.Category.Key)
		p.Sections = append(p.Sections, s)
	}

	if p.Empty {
		if searching {
			p.EmptyTitle = "No items found"
			p.EmptyHint = "Try adjusting your search terms"
		} else {
			p.EmptyTitle = "Your shopping list is empty"
			p.EmptyHint = "Add your first item to get started"
		}
	}
	return p
}

// Collapsed is the set of category keys whose items are hidden.
type Collapsed map[string]bool

// ParseCollapsed reads repeated ?collapsed=key values. Comma-separated
// values are accepted too.
func ParseCollapsed(values []string) Collapsed {
	c := make(Collapsed)
	for _, v := range values {
		for _, key := range strings.Split(v, ",") {
			if key = strings.TrimSpace(key); key != "" {
				c[key] = true
			}
		}
	}
	return c
}

func (c Collapsed) Has(key string) bool {
	return c[key]
}

// Toggle returns a copy with key flipped. The receiver is not modified.
func (c Collapsed) Toggle(key string) Collapsed {
	out := make(Collapsed, len(c)+1)
	for k := range c {
		out[k] = true
	}
	if out[key] {
		delete(out, key)
	} else {
		out[key] = true
	}
	return out
}

// Keys returns the collapsed keys sorted.
func (c Collapsed) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToggleURL is the page link that flips key while keeping the search query.
func (p Page) ToggleURL(key string) string {
	v := url.Values{}
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	for _, k := range p.Collapsed.Toggle(key).Keys() {
		v.Add("collapsed", k)
	}
	if len(v) == 0 {
		return "/"
	}
	return "/?" + v.Encode()
}

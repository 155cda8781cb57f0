// Package filter produces derived views over the unified record set. A
// view borrows record pointers from the dataset; it never copies or
// mutates the originals, and it preserves insertion order.
package filter

import (
	"time"

	"github.com/chainsight-io/chainsight/pkg/models"
)

// AllCategories is the category sentinel matching every record.
const AllCategories = "All"

// Spec is a filter request: an inclusive date range plus an optional
// category. Zero times leave that bound open; an empty or AllCategories
// category matches everything.
type Spec struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Category string    `json:"category"`
}

// matchesCategory reports whether the spec admits the given category.
func (s Spec) matchesCategory(category string) bool {
	return s.Category == "" || s.Category == AllCategories || s.Category == category
}

// matchesDate reports whether the spec's inclusive range admits the given
// date. Records with a missing date only pass a fully open range: a bounded
// filter cannot place them, so it excludes them.
func (s Spec) matchesDate(date time.Time) bool {
	if date.IsZero() {
		return s.Start.IsZero() && s.End.IsZero()
	}
	if !s.Start.IsZero() && date.Before(s.Start) {
		return false
	}
	if !s.End.IsZero() && date.After(s.End) {
		return false
	}
	return true
}

// View is one filtered pass over the dataset. An empty view is valid.
type View struct {
	Spec      Spec
	Orders    []*models.OrderRecord
	Inventory []*models.InventoryRecord
}

// Apply filters the dataset by the spec. Orders are selected on their order
// date, inventory snapshots on their observation date; both in the original
// insertion order.
func Apply(ds *models.Dataset, spec Spec) *View {
	view := &View{Spec: spec}

	for _, o := range ds.Orders {
		if !spec.matchesDate(o.OrderDate) {
			continue
		}
		if !spec.matchesCategory(o.Category) {
			continue
		}
		view.Orders = append(view.Orders, o)
	}

	for _, r := range ds.Inventory {
		if !spec.matchesDate(r.ObservedAt) {
			continue
		}
		if !spec.matchesCategory(r.Category) {
			continue
		}
		view.Inventory = append(view.Inventory, r)
	}

	return view
}

// Narrow filters an existing view further. Filtering a view by a spec is
// consistent with filtering the dataset by the intersection of both specs.
func (v *View) Narrow(spec Spec) *View {
	out := &View{Spec: spec}

	for _, o := range v.Orders {
		if spec.matchesDate(o.OrderDate) && spec.matchesCategory(o.Category) {
			out.Orders = append(out.Orders, o)
		}
	}
	for _, r := range v.Inventory {
		if spec.matchesDate(r.ObservedAt) && spec.matchesCategory(r.Category) {
			out.Inventory = append(out.Inventory, r)
		}
	}
	return out
}

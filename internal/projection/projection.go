// Package projection derives the visible, ordered subset of threads from
// the authoritative collection. Pure: no network, no mutation, identical
// inputs always yield identical output.
package projection

import (
	"sort"
	"strings"

	"github.com/simmer-dev/simmer/internal/domain"
)

// Project filters then stably sorts a snapshot of the thread collection.
// Predicates are AND-combined and skipped at their sentinel values;
// ties keep the snapshot's original relative order.
func Project(threads []domain.Thread, filters domain.FilterSet, key domain.SortKey, viewerId domain.UserId) []domain.Thread {
	out := make([]domain.Thread, 0, len(threads))
	for _, t := range threads {
		if matches(t, filters, viewerId) {
			out = append(out, t)
		}
	}
	sortThreads(out, key)
	return out
}

func matches(t domain.Thread, f domain.FilterSet, viewerId domain.UserId) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Search)) {
		return false
	}
	if f.AuthorActive() && t.Author.Name != f.Author {
		return false
	}
	if f.CategoryActive() && t.Category != f.Category {
		return false
	}
	if f.FavoritesOnly && !t.Favorite {
		return false
	}
	if f.MineOnly && t.Author.Id != viewerId {
		return false
	}
	return true
}

func sortThreads(threads []domain.Thread, key domain.SortKey) {
	switch key {
	case domain.SortScore:
		sort.SliceStable(threads, func(i, j int) bool {
			return threads[i].Score() > threads[j].Score()
		})
	case domain.SortNewest:
		sort.SliceStable(threads, func(i, j int) bool {
			return threads[i].CreatedAt.After(threads[j].CreatedAt)
		})
	case domain.SortOldest:
		sort.SliceStable(threads, func(i, j int) bool {
			return threads[i].CreatedAt.Before(threads[j].CreatedAt)
		})
	case domain.SortMostViewed:
		sort.SliceStable(threads, func(i, j int) bool {
			return threads[i].Views > threads[j].Views
		})
	case domain.SortMostCommented:
		sort.SliceStable(threads, func(i, j int) bool {
			return threads[i].Comments > threads[j].Comments
		})
	}
}

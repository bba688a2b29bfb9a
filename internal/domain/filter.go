package domain

// All is the sentinel value for the author and category selectors.
const All = "All"

// FilterSet is viewer-scoped query state. Predicates at their zero/sentinel
// value are skipped; active predicates are AND-combined, including
// FavoritesOnly together with MineOnly.
type FilterSet struct {
	Search        string `json:"search"`
	Author        string `json:"author"`
	Category      string `json:"category"`
	FavoritesOnly bool   `json:"favorites_only"`
	MineOnly      bool   `json:"mine_only"`
}

func isAll(selector string) bool {
	return selector == "" || selector == All
}

func (f FilterSet) AuthorActive() bool   { return !isAll(f.Author) }
func (f FilterSet) CategoryActive() bool { return !isAll(f.Category) }

// SortKey selects the ordering of the projected thread list.
type SortKey string

const (
	SortScore         SortKey = "score"
	SortNewest        SortKey = "newest"
	SortOldest        SortKey = "oldest"
	SortMostViewed    SortKey = "views"
	SortMostCommented SortKey = "comments"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortScore, SortNewest, SortOldest, SortMostViewed, SortMostCommented:
		return true
	}
	return false
}

// ScoreSensitive reports whether a vote reconciliation changes the ordering
// under this key, requiring a re-sort of the projected list.
func (k SortKey) ScoreSensitive() bool {
	return k == SortScore
}

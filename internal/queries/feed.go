package queries

import (
	"sort"

	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/models"
)

// SortOption selects the feed ordering.
type SortOption string

const (
	// SortNewest orders by timestamp descending. The default.
	SortNewest SortOption = "newest"
	// SortMostLiked orders by like count descending.
	SortMostLiked SortOption = "mostLiked"
	// SortMostCommented orders by comment count descending.
	SortMostCommented SortOption = "mostCommented"
	// SortNotViewed drops already-viewed posts, newest first.
	SortNotViewed SortOption = "notViewed"
)

// SortPosts returns a re-ordered copy of posts. The input is never modified;
// the backend's ordering is advisory and the client re-sorts for display.
func (s *Service) SortPosts(posts []models.Post, opt SortOption) []models.Post {
	filtered := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if opt == SortNotViewed && s.viewed != nil && s.viewed.Contains(p.ID) {
			continue
		}
		filtered = append(filtered, p)
	}

	switch opt {
	case SortMostLiked:
		sort.SliceStable(filtered, func(i, j int) bool {
			return len(filtered[i].Likes) > len(filtered[j].Likes)
		})
	case SortMostCommented:
		sort.SliceStable(filtered, func(i, j int) bool {
			return len(filtered[i].Comments) > len(filtered[j].Comments)
		})
	default:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Timestamp.After(filtered[j].Timestamp)
		})
	}
	return filtered
}

package items

import "strconv"

const (
	keyspaceID   = "id"
	keyspaceSlug = "slug"
)

// IDKey is the cache key holding the item with the given id.
func IDKey(id int64) string {
	return "items:id:" + strconv.FormatInt(id, 10)
}

// SlugKey is the cache key holding the item with the given slug.
func SlugKey(slug string) string {
	return "items:slug:" + slug
}

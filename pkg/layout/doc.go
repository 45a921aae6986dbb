// Package layout maps positions in the forum hierarchy onto the on-disk archive.
//
// The archive tree mirrors the forum:
//
//	<host>/categories.json
//	<host>/<cat>/<catId>.json
//	<host>/<cat>/categories_parent_category_id-<catId>.json
//	<host>/<cat>/<sub>/<catId>_<subId>.json
//	<host>/<cat>/<sub>/<topic>/<topicId>.json
//	<host>/<cat>/_topics_without_a_subcategory/<topic>/<topicId>.json
package layout

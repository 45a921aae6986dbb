// Package crawler archives the category tree of a Discourse forum.
//
// The walk is depth-first: the category listing, then per category its detail,
// its subcategory listing, each subcategory detail and every topic listed there.
// Topics a category lists that no subcategory lists are archived under
// layout.OrphanSubcategory. Each category logs a DIFF line:
//
//	[DIFF] <listing sizes equal>, <topics from subcategories>, <topics in category>
//
// Every resource goes through the cache, so an interrupted crawl resumes where it stopped.
package crawler

package discourse

import "fmt"

const (
	// CategoriesPath lists the top-level categories
	CategoriesPath = "/categories.json"
)

// CategoryPath returns the detail resource of a category, embedding its topic listing
func CategoryPath(categoryID int64) string {
	return fmt.Sprintf("/c/%d.json", categoryID)
}

// SubcategoriesPath returns the category listing filtered by parent
func SubcategoriesPath(parentID int64) string {
	return fmt.Sprintf("%s?parent_category_id=%d", CategoriesPath, parentID)
}

// SubcategoryPath returns the detail resource of a subcategory
func SubcategoryPath(categoryID, subcategoryID int64) string {
	return fmt.Sprintf("/c/%d/%d.json", categoryID, subcategoryID)
}

// TopicPath returns the full topic resource including its post stream
func TopicPath(topicID int64) string {
	return fmt.Sprintf("/t/%d.json", topicID)
}

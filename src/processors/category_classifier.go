package processors

import (
	"strings"

	"github.com/username/pennywise/backend/src/models"
)

// keywordRule maps a merchant/transaction keyword found in a description
// to the name of the category it suggests.
type keywordRule struct {
	keyword  string
	category string
}

// Ordered keyword table used as the classifier's last resort. The first
// keyword contained in the description decides the lookup; later keywords
// are not consulted even when the lookup finds no category.
var keywordRules = []keywordRule{
	{"amazon", "Shopping"},
	{"walmart", "Groceries"},
	{"target", "Shopping"},
	{"starbucks", "Food"},
	{"mcdonald", "Food"},
	{"netflix", "Entertainment"},
	{"spotify", "Entertainment"},
	{"uber", "Transport"},
	{"lyft", "Transport"},
	{"salary", "Salary"},
	{"payroll", "Salary"},
	{"depo", "Salary"},
	{"dividend", "Salary"},
	{"rent", "Housing"},
	{"apartment", "Housing"},
	{"mortgage", "Housing"},
	{"electric", "Utilities"},
	{"water", "Utilities"},
	{"internet", "Utilities"},
}

// CategoryClassifier assigns categories to staged transactions using three
// ordered strategies, first match wins:
//
//  1. the source file's own category hint, matched exactly (case-insensitive)
//     against a category name;
//  2. the description containing a category name (case-insensitive);
//  3. the static keyword table above.
//
// A transaction no strategy matches stays uncategorized and is still
// importable.
type CategoryClassifier struct{}

func NewCategoryClassifier() *CategoryClassifier {
	return &CategoryClassifier{}
}

// Process classifies every staged transaction in place against the user's
// visible categories and returns the slice for chaining.
func (c *CategoryClassifier) Process(staged []models.StagedTransaction, categories []models.Category) []models.StagedTransaction {
	for i := range staged {
		if id := c.Classify(staged[i], categories); id != "" {
			staged[i].CategoryID = id
		}
	}
	return staged
}

// Classify returns the matching category ID, or "" when nothing matches.
func (c *CategoryClassifier) Classify(tx models.StagedTransaction, categories []models.Category) string {
	description := strings.ToLower(tx.Description)

	if hint := strings.TrimSpace(tx.CategoryHint); hint != "" {
		if cat := findByName(categories, hint); cat != nil {
			return cat.ID
		}
	}

	for _, cat := range categories {
		if strings.Contains(description, strings.ToLower(cat.Name)) {
			return cat.ID
		}
	}

	for _, rule := range keywordRules {
		if strings.Contains(description, rule.keyword) {
			if cat := findByName(categories, rule.category); cat != nil {
				return cat.ID
			}
			// First contained keyword decides; do not fall through.
			return ""
		}
	}
	return ""
}

func findByName(categories []models.Category, name string) *models.Category {
	for i := range categories {
		if strings.EqualFold(categories[i].Name, name) {
			return &categories[i]
		}
	}
	return nil
}

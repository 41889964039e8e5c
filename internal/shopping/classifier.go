package shopping

import (
	"regexp"
	"strings"
)

// Purchasing categories.
const (
	CategoryMeat       = "meat"
	CategoryDairy      = "dairy"
	CategoryProduce    = "produce"
	CategoryGrains     = "grains"
	CategoryCanned     = "canned"
	CategoryBaking     = "baking"
	CategorySpices     = "spices"
	CategoryCondiments = "condiments"
	CategoryNuts       = "nuts"
	CategoryBeverages  = "beverages"
	CategoryFrozen     = "frozen"
	CategoryOther      = "other"
)

type categoryRule struct {
	category string
	keywords []string
}

// Order matters: the first rule with a matching keyword wins.
var categoryTable = []categoryRule{
	{CategoryMeat, []string{"chicken", "beef", "pork", "turkey", "lamb", "bacon", "sausage", "ham", "salmon", "tuna", "fish", "shrimp", "prawn", "cod", "tilapia", "mince", "veal", "duck"}},
	{CategoryDairy, []string{"milk", "cheese", "yogurt", "yoghurt", "butter", "cream", "egg", "whey", "kefir", "cottage"}},
	{CategoryProduce, []string{"apple", "banana", "berry", "berries", "spinach", "lettuce", "tomato", "onion", "garlic", "pepper", "carrot", "broccoli", "potato", "avocado", "lemon", "lime", "cucumber", "kale", "mushroom", "zucchini", "orange", "celery", "ginger", "basil", "parsley", "cilantro", "mango", "grape", "pear", "peach", "asparagus", "cabbage", "cauliflower"}},
	{CategoryGrains, []string{"rice", "oat", "bread", "pasta", "quinoa", "tortilla", "cereal", "noodle", "bagel", "couscous", "barley", "granola", "wrap", "cracker"}},
	{CategoryCanned, []string{"canned", "beans", "chickpea", "lentil", "broth", "stock", "soup", "passata"}},
	{CategoryBaking, []string{"flour", "sugar", "baking", "yeast", "vanilla", "cocoa", "honey", "syrup", "chocolate"}},
	{CategorySpices, []string{"salt", "cinnamon", "cumin", "paprika", "oregano", "turmeric", "spice", "seasoning", "thyme", "chili flakes"}},
	{CategoryCondiments, []string{"oil", "vinegar", "sauce", "mayonnaise", "mustard", "ketchup", "salsa", "hummus", "dressing"}},
	{CategoryNuts, []string{"almond", "walnut", "peanut", "cashew", "pecan", "pistachio", "seed", "nut"}},
	{CategoryBeverages, []string{"juice", "coffee", "green tea", "sparkling water", "protein powder", "kombucha"}},
	{CategoryFrozen, []string{"frozen", "popsicle", "sorbet"}},
}

// Cuts of meat that rarely name the animal.
var meatCutPattern = regexp.MustCompile(`\b(fillet|steak|chop|ground)\b`)

// Classify maps an ingredient name to a purchasing category.
func Classify(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range categoryTable {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	if meatCutPattern.MatchString(lower) {
		return CategoryMeat
	}
	return CategoryOther
}

// Categories returns the category vocabulary in match order, followed by "other".
func Categories() []string {
	out := make([]string, 0, len(categoryTable)+1)
	for _, rule := range categoryTable {
		out = append(out, rule.category)
	}
	return append(out, CategoryOther)
}

// CategoryKeywords returns a copy of the keyword table.
func CategoryKeywords() map[string][]string {
	out := make(map[string][]string, len(categoryTable))
	for _, rule := range categoryTable {
		out[rule.category] = append([]string(nil), rule.keywords...)
	}
	return out
}

package model

// Category is one of the fixed shopping categories items are grouped under.
type Category struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// DefaultEmoji is shown for category keys outside the catalogue.
const DefaultEmoji = "📦"

// Categories is the ordered catalogue. Grouping iterates this list, so an
// item whose category is not listed here never shows up in a group.
var Categories = []Category{
	{Key: "fruits", Name: "Fruits", Emoji: "🍎"},
	{Key: "dairy", Name: "Dairy", Emoji: "🥛"},
	{Key: "meat", Name: "Meat", Emoji: "🥩"},
	{Key: "vegetables", Name: "Vegetables", Emoji: "🥕"},
	{Key: "pantry", Name: "Pantry", Emoji: "🥫"},
	{Key: "frozen", Name: "Frozen", Emoji: "🧊"},
	{Key: "bakery", Name: "Bakery", Emoji: "🍞"},
	{Key: "household", Name: "Household", Emoji: "🧽"},
}

// CategoryByKey looks up a catalogue entry.
func CategoryByKey(key string) (Category, bool) {
	for _, c := range Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryEmoji returns the emoji for key, or DefaultEmoji when unknown.
func CategoryEmoji(key string) string {
	if c, ok := CategoryByKey(key); ok {
		return c.Emoji
	}
	return DefaultEmoji
}

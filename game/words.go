package game

type Category string

const (
	CategoryEasy   Category = "easy"
	CategoryMedium Category = "medium"
	CategoryHard   Category = "hard"
)

const (
	GridColumns = 3
	GridRows    = 5
)

// Column order is fixed: easy, medium, hard.
var GridCategories = [GridColumns]Category{CategoryEasy, CategoryMedium, CategoryHard}

type Word struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

var easyWords = []string{
	"Dog", "Cat", "Sun", "Moon", "Tree", "Book", "Car", "House", "Baby",
	"Ball", "Bird", "Fish", "Milk", "Cake", "Star", "Pen", "Cup", "Door",
	"Rain", "Snow", "Hat", "Shoe", "Bed", "Food", "Game",
}

var mediumWords = []string{
	"Airport", "Beauty", "Camping", "Digital", "Evening", "Freedom", "Gravity",
	"History", "Invoice", "Journey", "Kitchen", "Lecture", "Machine", "Network",
	"October", "Passion", "Quality", "Rainbow", "Science", "Traffic", "Umbrella",
	"Village", "Website", "Yearbook", "Zeppelin",
}

var hardWords = []string{
	"Ambiguity", "Bureaucracy", "Carnivorous", "Dichotomy", "Eccentric",
	"Fortuitous", "Gratuitous", "Hypothesis", "Indignation", "Juxtaposition",
	"Kaleidoscope", "Labyrinthine", "Mercurial", "Nefarious", "Obfuscation",
	"Paralogism", "Quintessence", "Recalcitrant", "Sycophantic", "Tangential",
	"Ubiquitous", "Verisimilitude", "Whimsical", "Xenophobia", "Zealotry",
}

func wordPool(category Category) []string {
	switch category {
	case CategoryEasy:
		return easyWords
	case CategoryMedium:
		return mediumWords
	case CategoryHard:
		return hardWords
	}
	return easyWords
}

// DrawWords samples count words with replacement from the pool for the
// category. Each word gets a fresh id; the category label is kept even when
// the pool lookup falls back to easy.
func DrawWords(category Category, count int) []Word {
	pool := wordPool(category)
	words := make([]Word, count)
	for i := range words {
		words[i] = Word{
			ID:       newToken(wordIDLength),
			Text:     pool[randomIndex(len(pool))],
			Category: category,
		}
	}
	return words
}

// Points returns the score value of a word category.
func Points(category Category) int {
	switch category {
	case CategoryEasy:
		return 1
	case CategoryMedium:
		return 2
	case CategoryHard:
		return 3
	}
	return 0
}

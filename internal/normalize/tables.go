package normalize

import "regexp"

type synonym struct {
	pattern *regexp.Regexp
	repl    string
}

// Replacements never produce a word that another source list matches, so
// applying the table twice is the same as applying it once.
var nameSynonyms = []synonym{
	{regexp.MustCompile(`(?i)\b(?:kilograms?|kilo|kgs)\b`), "kg"},
	{regexp.MustCompile(`(?i)\b(?:grams?|grm|gr)\b`), "g"},
	{regexp.MustCompile(`(?i)\b(?:mililiters?|milliliters?|millilitres?)\b`), "ml"},
	{regexp.MustCompile(`(?i)\b(?:liters?|litres?|ltr)\b`), "l"},
	{regexp.MustCompile(`(?i)\b(?:pieces|pcs)\b`), "pc"},
	{regexp.MustCompile(`(?i)\b(?:dozens|lusin)\b`), "dozen"},
	{regexp.MustCompile(`(?i)\bfrsh\b`), "fresh"},
	{regexp.MustCompile(`(?i)\bpkt\b`), "pack"},
}

var namePrefixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:item|product|produk|nama|name)\s*:\s*`),
	regexp.MustCompile(`(?i)^no\.?\s*\d+\s*[.):-]?\s*`),
	regexp.MustCompile(`^\d+\s*[.)]\s+`),
}

// Words kept lowercase in display names unless they open the name.
var titleStopwords = map[string]bool{
	"and": true, "or": true, "of": true, "the": true, "with": true,
	"in": true, "for": true, "dan": true, "atau": true, "dengan": true,
	"untuk": true,
}

// Unit abbreviations stay lowercase inside display names.
var lowercaseTokens = map[string]bool{
	"kg": true, "g": true, "ml": true, "l": true, "pc": true, "cm": true, "mm": true,
}

var unitSynonyms = map[string]string{
	"kg": "kg", "kgs": "kg", "kilo": "kg", "kilos": "kg", "kilogram": "kg", "kilograms": "kg",
	"g": "g", "gr": "g", "grm": "g", "gram": "g", "grams": "g",
	"ons": "ons",
	"l":   "l", "lt": "l", "ltr": "l", "liter": "l", "liters": "l", "litre": "l", "litres": "l",
	"ml": "ml", "mililiter": "ml", "milliliter": "ml", "millilitre": "ml",
	"piece": "piece", "pieces": "piece", "pcs": "piece", "pc": "piece", "buah": "piece",
	"bh": "piece", "biji": "piece", "each": "piece", "ea": "piece", "unit": "piece",
	"pack": "pack", "packs": "pack", "pak": "pack", "pck": "pack", "pkt": "pack", "bungkus": "pack",
	"box": "box", "boxes": "box", "dus": "box", "kardus": "box", "karton": "box", "carton": "box",
	"bottle": "bottle", "bottles": "bottle", "botol": "bottle", "btl": "bottle",
	"bunch": "bunch", "ikat": "bunch", "sisir": "bunch",
	"dozen": "dozen", "dz": "dozen", "lusin": "dozen",
	"sack": "sack", "karung": "sack", "bag": "sack",
	"can": "can", "kaleng": "can",
	"tray": "tray", "sachet": "sachet", "saset": "sachet",
	"tail": "tail", "ekor": "tail",
	"m": "m", "meter": "m", "mtr": "m", "cm": "cm",
	"roll": "roll", "rol": "roll",
	"portion": "portion", "porsi": "portion",
}

type categoryRule struct {
	canonical string
	keywords  []string
}

var categoryRules = []categoryRule{
	{"Vegetables", []string{"vegetables", "vegetable", "sayur", "sayuran", "tomat", "tomato", "bawang", "onion", "cabai", "chili", "wortel", "carrot", "kentang", "potato", "bayam", "kangkung"}},
	{"Fruits", []string{"fruits", "fruit", "buah", "apel", "apple", "jeruk", "orange", "pisang", "banana", "mangga", "mango"}},
	{"Meat", []string{"meat", "daging", "sapi", "beef", "kambing", "lamb", "pork"}},
	{"Poultry", []string{"poultry", "ayam", "chicken", "bebek", "duck", "telur", "egg"}},
	{"Seafood", []string{"seafood", "ikan", "fish", "udang", "shrimp", "cumi", "squid"}},
	{"Dairy", []string{"dairy", "susu", "milk", "keju", "cheese", "butter", "mentega", "yogurt", "cream"}},
	{"Grains", []string{"grains", "grain", "beras", "rice", "tepung", "flour", "gandum", "wheat", "noodle"}},
	{"Spices", []string{"spices", "spice", "bumbu", "garam", "salt", "lada", "pepper", "ketumbar", "kunyit"}},
	{"Beverages", []string{"beverages", "beverage", "minuman", "drink", "kopi", "coffee", "juice"}},
	{"Oils", []string{"oils", "oil", "minyak"}},
	{"Packaging", []string{"packaging", "kemasan", "plastik", "plastic"}},
}

// Legal-entity markers dropped from supplier names, compared without dots.
var legalEntityTokens = map[string]bool{
	"pt": true, "cv": true, "ud": true, "co": true, "ltd": true, "inc": true,
	"llc": true, "tbk": true, "corp": true, "persero": true,
}

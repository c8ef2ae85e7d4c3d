package slug

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

var translit = strings.NewReplacer(
	"а", "a", "б", "b", "в", "v", "г", "g", "д", "d", "е", "e", "ё", "e",
	"ж", "zh", "з", "z", "и", "i", "й", "y", "к", "k", "л", "l", "м", "m",
	"н", "n", "о", "o", "п", "p", "р", "r", "с", "s", "т", "t", "у", "u",
	"ф", "f", "х", "h", "ц", "ts", "ч", "ch", "ш", "sh", "щ", "sch", "ъ", "",
	"ы", "y", "ь", "", "э", "e", "ю", "yu", "я", "ya",
)

// Generate делает URL-совместимый slug: "Кофе Арабика 1кг" -> "kofe-arabika-1kg"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = translit.Replace(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// WithTimestamp добавляет суффикс в миллисекундах, чтобы одинаковые имена
// товаров не конфликтовали по уникальному индексу slug
func WithTimestamp(name string, now time.Time) string {
	suffix := strconv.FormatInt(now.UnixMilli(), 10)
	base := Generate(name)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

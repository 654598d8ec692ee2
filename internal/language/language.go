package language

import (
	"strings"

	"golang.org/x/text/cases"
	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	legacy  string   // Withdrawn ISO 639-1 code still emitted by some detectors
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{"he", "heb", "", "iw", "Hebrew", []string{"hebrew", "ivrit"}},
	{"en", "eng", "", "", "English", []string{"english"}},
	{"ar", "ara", "", "", "Arabic", []string{"arabic"}},
	{"ru", "rus", "", "", "Russian", []string{"russian"}},
	{"yi", "yid", "", "ji", "Yiddish", []string{"yiddish"}},
	{"es", "spa", "", "", "Spanish", []string{"spanish"}},
	{"fr", "fra", "fre", "", "French", []string{"french"}},
	{"de", "deu", "ger", "", "German", []string{"german"}},
	{"it", "ita", "", "", "Italian", []string{"italian"}},
	{"pt", "por", "", "", "Portuguese", []string{"portuguese"}},
	{"nl", "nld", "dut", "", "Dutch", []string{"dutch"}},
	{"pl", "pol", "", "", "Polish", []string{"polish"}},
	{"uk", "ukr", "", "", "Ukrainian", []string{"ukrainian"}},
	{"ro", "ron", "rum", "", "Romanian", []string{"romanian"}},
	{"hu", "hun", "", "", "Hungarian", []string{"hungarian"}},
	{"am", "amh", "", "", "Amharic", []string{"amharic"}},
	{"zh", "zho", "chi", "", "Chinese", []string{"chinese"}},
	{"ja", "jpn", "", "", "Japanese", []string{"japanese"}},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

var titleCaser = cases.Title(xlang.English)

func init() {
	byCode2 = make(map[string]*entry, len(languages)*2)
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		if e.legacy != "" {
			byCode2[e.legacy] = e
		}
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// baseOfTag reduces a BCP 47 tag such as "he-IL" or "en_US" to its base
// language subtag. Returns "" when the value does not parse as a tag.
func baseOfTag(code string) string {
	tag, err := xlang.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == xlang.No {
		return ""
	}
	return base.String()
}

// ToISO2 converts any recognized language code, tag or word to ISO 639-1.
// Returns empty string for unrecognized input.
// If the input is already a 2-letter code (even if unknown), it passes through.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	if strings.ContainsAny(code, "-_") {
		if base := baseOfTag(code); base != "" && base != code {
			return ToISO2(base)
		}
		return ""
	}
	if len(code) == 3 {
		// ISO 639-3 codes outside the table, e.g. "kor" from a detector.
		if base := baseOfTag(code); len(base) == 2 {
			return base
		}
	}
	return ""
}

// ToISO3 converts any recognized language code to ISO 639-2 (3-letter).
// Returns "und" for unrecognized 2-letter codes, passes through 3-letter codes.
func ToISO3(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "und"
	}
	if e := lookup(code); e != nil {
		return e.code3
	}
	if len(code) == 3 {
		return code
	}
	return "und"
}

// DisplayName returns a human-readable language name for any code.
// Codes outside the built-in table are resolved through the CLDR names
// shipped with golang.org/x/text. Returns "Unknown" for empty input, or the
// uppercased code when nothing matches.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	if e := lookup(trimmed); e != nil {
		return e.display
	}
	if tag, err := xlang.Parse(trimmed); err == nil {
		if name := display.English.Languages().Name(tag); name != "" {
			return titleCaser.String(name)
		}
	}
	return strings.ToUpper(trimmed)
}

// NormalizeList deduplicates and normalizes a list of language codes to ISO 639-1.
func NormalizeList(languages []string) []string {
	if len(languages) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(languages))
	seen := make(map[string]struct{}, len(languages))
	for _, lang := range languages {
		trimmed := strings.ToLower(strings.TrimSpace(lang))
		if trimmed == "" {
			continue
		}
		if mapped := ToISO2(trimmed); mapped != "" {
			trimmed = mapped
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized
}

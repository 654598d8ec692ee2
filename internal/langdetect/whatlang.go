package langdetect

import (
	"context"
	"errors"
	"fmt"

	"github.com/abadojack/whatlanggo"

	"lingosort/internal/language"
)

// ErrNoScript is returned when the text contains no letters of any known script.
var ErrNoScript = errors.New("no writing script detected")

// WhatlangModel detects languages in-process with trigram profiles. It is
// deterministic, so it does not implement Seeder.
type WhatlangModel struct {
	options whatlanggo.Options
}

// NewWhatlang builds a model restricted to candidates when any are given.
// Candidates use any code form the language package accepts.
func NewWhatlang(candidates []string) (*WhatlangModel, error) {
	model := &WhatlangModel{}
	if len(candidates) == 0 {
		return model, nil
	}
	whitelist := make(map[whatlanggo.Lang]bool, len(candidates))
	for _, candidate := range candidates {
		lang := whatlanggo.CodeToLang(language.ToISO3(candidate))
		if lang < 0 {
			return nil, fmt.Errorf("language %q is not supported by whatlang", candidate)
		}
		whitelist[lang] = true
	}
	model.options.Whitelist = whitelist
	return model, nil
}

// Detect implements Model.
func (m *WhatlangModel) Detect(_ context.Context, text string) (Detection, error) {
	info := whatlanggo.DetectWithOptions(text, m.options)
	if info.Script == nil || info.Lang < 0 {
		return Detection{}, ErrNoScript
	}
	return Detection{Code: info.Lang.Iso6393(), Confidence: info.Confidence}, nil
}

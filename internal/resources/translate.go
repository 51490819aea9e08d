package resources

import (
	"fmt"

	"golang.org/x/text/language"
)

// Translator holds the decoded translates/<lang>.ron table for one
// locale: a flat string-id -> display-string map the UI collaborator
// queries. Loading, not rendering or font shaping, is the core's
// concern.
type Translator struct {
	Tag     language.Tag
	Strings map[string]string
}

// LoadTranslation validates langTag (e.g. "en-US") against BCP 47 and
// decodes the RON table of string-id -> localized text.
func LoadTranslation(langTag, ron string) (*Translator, error) {
	tag, err := language.Parse(langTag)
	if err != nil {
		return nil, fmt.Errorf("resources: invalid language tag %q: %w", langTag, err)
	}
	v, err := Decode(ron)
	if err != nil {
		return nil, fmt.Errorf("resources: decoding translation table: %w", err)
	}
	m, ok := v.(map[string]Value)
	if !ok {
		return nil, fmt.Errorf("resources: translation root is not a map (got %T)", v)
	}
	strings := make(map[string]string, len(m))
	for k, val := range m {
		s, ok := val.(string)
		if !ok {
			continue
		}
		strings[k] = s
	}
	return &Translator{Tag: tag, Strings: strings}, nil
}

// Lookup returns the localized string for key, or key itself if untranslated.
func (t *Translator) Lookup(key string) string {
	if t == nil {
		return key
	}
	if s, ok := t.Strings[key]; ok {
		return s
	}
	return key
}

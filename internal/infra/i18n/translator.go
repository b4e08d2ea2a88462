package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// DefaultLang is the catalog shipped with the binary.
const DefaultLang = "en"

type Translator struct {
	translations map[string]string
}

// NewTranslator loads locales/<langCode>.yaml from fsys.
func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := filepath.ToSlash(filepath.Join("locales", fmt.Sprintf("%s.yaml", langCode)))

	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}
	return newTranslatorFromBytes(data)
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

var (
	defaultOnce sync.Once
	defaultT    *Translator
)

// Default returns the embedded English catalog.
func Default() *Translator {
	defaultOnce.Do(func() {
		t, err := NewTranslator(LocalesFS, DefaultLang)
		if err != nil {
			panic(err) // embedded at build time
		}
		defaultT = t
	})
	return defaultT
}

// T returns the text for key, formatted with args. Unknown keys come back
// unchanged.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

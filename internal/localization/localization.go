package localization

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed translations/*.yaml
var translationsFS embed.FS

// Service resolves dotted message keys against the embedded Persian
// catalog. Unknown keys come back verbatim so a missing translation is
// visible in chat instead of being silently dropped.
type Service struct {
	translations map[string]interface{}
}

func NewService() (*Service, error) {
	data, err := translationsFS.ReadFile("translations/fa.yaml")
	if err != nil {
		return nil, fmt.Errorf("read fa translations: %w", err)
	}

	var translations map[string]interface{}
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("parse fa translations: %w", err)
	}

	return &Service{translations: translations}, nil
}

// Get retrieves a message by key. Key format: "section.key". Params fill
// {{name}} style placeholders.
func (s *Service) Get(key string, params map[string]interface{}) string {
	var current interface{} = s.translations
	for _, part := range strings.Split(key, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return key
		}
		current = m[part]
	}

	text, ok := current.(string)
	if !ok {
		return key
	}
	return replacePlaceholders(text, params)
}

func replacePlaceholders(text string, params map[string]interface{}) string {
	if params == nil {
		return text
	}

	result := text
	for key, value := range params {
		placeholder := fmt.Sprintf("{{%s}}", key)
		result = strings.ReplaceAll(result, placeholder, fmt.Sprint(value))
	}
	return result
}

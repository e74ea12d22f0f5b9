package uri

import "strings"

// ParseQuery parses a raw query string ("a=1&b=2&b=3") into a key-values
// map. Keys and values are form-unescaped; components with malformed
// escapes are skipped rather than failing the whole query. A key without
// '=' maps to an empty value.
func ParseQuery(raw string) map[string][]string {
	params := make(map[string][]string)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}

		key, value, _ := strings.Cut(pair, "=")

		key, err := UnescapeForm(key)
		if err != nil {
			continue
		}
		value, err = UnescapeForm(value)
		if err != nil {
			continue
		}

		params[key] = append(params[key], value)
	}

	return params
}

package dataset

import "strings"

// NormalizeColumn maps a raw header name to its canonical identifier form:
// lowercase, alphanumeric runs joined by single underscores. "Order ID"
// becomes "order_id", "Sub-Category" becomes "sub_category".
func NormalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff") // UTF-8 BOM on the first header cell
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

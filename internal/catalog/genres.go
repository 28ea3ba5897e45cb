package catalog

import "strings"

// ParseGenres reads a serialized genre list such as ['Classics', 'Fiction', "Children's"].
// Values without brackets are split on commas.
func ParseGenres(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return splitPlain(s)
	}
	s = s[1 : len(s)-1]

	var out []string
	var cur strings.Builder
	var quote rune
	escaped := false
	for _, r := range s {
		switch {
		case quote == 0:
			switch r {
			case '\'', '"':
				quote = r
				cur.Reset()
			case ',', ' ', '\t':
			default:
				// unquoted item, e.g. [Fiction, Romance]
				return splitPlain(s)
			}
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == quote:
			if g := strings.TrimSpace(cur.String()); g != "" {
				out = append(out, g)
			}
			quote = 0
		default:
			cur.WriteRune(r)
		}
	}
	return out
}

func splitPlain(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.Trim(strings.TrimSpace(p), `'"`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

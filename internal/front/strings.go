package front

import (
	"strconv"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"loom/internal/diag"
)

// stringValue decodes a string literal or an implicit concatenation of them.
func (f *frame) stringValue(n *sitter.Node) (string, error) {
	if n.Type() == "concatenated_string" {
		var sb strings.Builder
		for _, part := range namedChildren(n) {
			s, err := f.stringValue(part)
			if err != nil {
				return "", err
			}
			sb.WriteString(s)
		}
		return sb.String(), nil
	}
	loc := f.u.at(n)
	raw := f.u.text(n)

	i := 0
	for i < len(raw) && raw[i] != '\'' && raw[i] != '"' {
		i++
	}
	prefix := strings.ToLower(raw[:i])
	if strings.ContainsAny(prefix, "fb") {
		return "", diag.Errorf(diag.SynUnsupported, loc, "Unsupported string prefix: %s", raw[:i])
	}
	body := raw[i:]
	quote := body[:1]
	if strings.HasPrefix(body, quote+quote+quote) && len(body) >= 6 {
		quote = quote + quote + quote
	}
	if len(body) < 2*len(quote) {
		return "", diag.Errorf(diag.SynHostParse, loc, "Unterminated string literal.")
	}
	body = body[len(quote) : len(body)-len(quote)]
	if strings.Contains(prefix, "r") {
		return body, nil
	}
	return unescape(body), nil
}

// unescape applies host-syntax backslash escapes. Unknown escapes keep
// their backslash.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case '\n':
			// line continuation
		case '\\', '\'', '"':
			sb.WriteByte(e)
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case 'x', 'u', 'U':
			width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[e]
			if i+width < len(s) {
				if v, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32); err == nil && utf8.ValidRune(rune(v)) {
					sb.WriteRune(rune(v))
					i += width
					continue
				}
			}
			sb.WriteByte('\\')
			sb.WriteByte(e)
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(s[i:j], 8, 32)
			sb.WriteRune(rune(v))
			i = j - 1
		default:
			sb.WriteByte('\\')
			sb.WriteByte(e)
		}
	}
	return sb.String()
}

package pdf

import (
	"bytes"
	"strconv"
)

// xobjectCall is one "/Name Do" invocation in a content stream.
type xobjectCall struct {
	Name  string
	Start int // offset of the name operand
	End   int // offset just past the Do operator
}

func isContentWhitespace(b byte) bool {
	return b == 0 || b == '\t' || b == '\n' || b == '\f' || b == '\r' || b == ' '
}

func isContentDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(b byte) bool {
	return !isContentWhitespace(b) && !isContentDelimiter(b)
}

// xobjectCalls scans a decoded content stream and returns its XObject invocations in stream order.
func xobjectCalls(content []byte) []xobjectCall {
	var (
		calls     []xobjectCall
		name      string
		nameStart = -1
	)

	i := 0
	for i < len(content) {
		c := content[i]
		switch {
		case isContentWhitespace(c):
			i++
			continue
		case c == '%':
			for i < len(content) && content[i] != '\n' && content[i] != '\r' {
				i++
			}
			continue
		case c == '/':
			start := i
			i++
			for i < len(content) && isRegular(content[i]) {
				i++
			}
			name, nameStart = decodeName(content[start+1:i]), start
			continue
		case c == '(':
			i = skipLiteralString(content, i)
		case c == '<':
			if i+1 < len(content) && content[i+1] == '<' {
				i += 2
			} else {
				i = skipHexString(content, i)
			}
		case c == '>':
			i++
			if i < len(content) && content[i] == '>' {
				i++
			}
		case isContentDelimiter(c):
			i++
		default:
			start := i
			for i < len(content) && isRegular(content[i]) {
				i++
			}
			switch string(content[start:i]) {
			case "Do":
				if nameStart >= 0 {
					calls = append(calls, xobjectCall{Name: name, Start: nameStart, End: i})
				}
			case "BI":
				i = skipInlineImage(content, i)
			}
		}
		// Any token other than a name breaks the name/Do pairing.
		nameStart = -1
	}
	return calls
}

// invokedXObjects returns the distinct XObject names invoked by content, in first use order.
func invokedXObjects(content []byte) []string {
	seen := map[string]bool{}
	var names []string
	for _, call := range xobjectCalls(content) {
		if seen[call.Name] {
			continue
		}
		seen[call.Name] = true
		names = append(names, call.Name)
	}
	return names
}

// removeXObjectCalls strips every "/name Do" from content and reports how many were removed.
func removeXObjectCalls(content []byte, name string) ([]byte, int) {
	var (
		out     bytes.Buffer
		last    int
		removed int
	)
	for _, call := range xobjectCalls(content) {
		if call.Name != name {
			continue
		}
		out.Write(content[last:call.Start])
		out.WriteByte(' ')
		last = call.End
		removed++
	}
	if removed == 0 {
		return content, 0
	}
	out.Write(content[last:])
	return out.Bytes(), removed
}

func decodeName(raw []byte) string {
	if bytes.IndexByte(raw, '#') < 0 {
		return string(raw)
	}
	var b bytes.Buffer
	for i := 0; i < len(raw); i++ {
		if raw[i] == '#' && i+2 < len(raw) {
			if v, err := strconv.ParseUint(string(raw[i+1:i+3]), 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 2
				continue
			}
		}
		b.WriteByte(raw[i])
	}
	return b.String()
}

// skipLiteralString returns the offset just past the string starting at content[i] == '('.
func skipLiteralString(content []byte, i int) int {
	depth := 0
	for i < len(content) {
		switch content[i] {
		case '\\':
			i += 2
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
		i++
	}
	return i
}

func skipHexString(content []byte, i int) int {
	end := bytes.IndexByte(content[i:], '>')
	if end < 0 {
		return len(content)
	}
	return i + end + 1
}

// skipInlineImage skips from just after BI to just after the matching EI.
func skipInlineImage(content []byte, i int) int {
	// Dictionary entries up to the ID operator.
	for i < len(content) {
		c := content[i]
		switch {
		case isContentWhitespace(c):
			i++
		case c == '(':
			i = skipLiteralString(content, i)
		case c == '<' && !(i+1 < len(content) && content[i+1] == '<'):
			i = skipHexString(content, i)
		case isContentDelimiter(c):
			i++
		default:
			start := i
			for i < len(content) && isRegular(content[i]) {
				i++
			}
			if string(content[start:i]) == "ID" {
				return skipInlineData(content, i+1)
			}
		}
	}
	return i
}

func skipInlineData(content []byte, i int) int {
	for i < len(content) {
		idx := bytes.Index(content[i:], []byte("EI"))
		if idx < 0 {
			return len(content)
		}
		at := i + idx
		before := at == 0 || isContentWhitespace(content[at-1])
		after := at+2 == len(content) || isContentWhitespace(content[at+2])
		if before && after {
			return at + 2
		}
		i = at + 2
	}
	return i
}

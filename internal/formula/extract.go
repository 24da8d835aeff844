package formula

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ohare93/formula/internal/document"
)

// operatorChars end a formula fragment without needing a separating space
const operatorChars = "+-*/^%("

// Extract turns a document into an arithmetic expression. Text runs are copied
// literally and each tag is replaced by its numeric value, or 0 when the value is
// not numeric. Whitespace runs collapse to one space and the result is trimmed.
func Extract(nodes []document.Node) string {
	var b strings.Builder
	extractInto(&b, nodes)
	return strings.Join(strings.Fields(b.String()), " ")
}

func extractInto(b *strings.Builder, nodes []document.Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *document.Text:
			b.WriteString(n.Content)
		case *document.Tag:
			value := "0"
			if f, ok := n.Value.Float(); ok {
				value = strconv.FormatFloat(f, 'f', -1, 64)
			}
			if s := b.String(); len(s) > 0 && !strings.ContainsRune(operatorChars, rune(s[len(s)-1])) {
				b.WriteByte(' ')
			}
			b.WriteString(value)
			b.WriteByte(' ')
		case *document.Paragraph:
			extractInto(b, n.Children)
		default:
			panic(fmt.Sprintf("formula: unknown node type %T", n))
		}
	}
}

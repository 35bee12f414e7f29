package scaffolding

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// voidElements never have a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// CheckMarkup reports unbalanced or mismatched tags in an HTML fragment.
// Template actions are plain text to the tokenizer and are ignored.
func CheckMarkup(content []byte) error {
	z := html.NewTokenizer(bytes.NewReader(content))
	var stack []string

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				if len(stack) > 0 {
					return fmt.Errorf("unclosed <%s>", stack[len(stack)-1])
				}
				return nil
			}
			return z.Err()
		case html.StartTagToken:
			name, _ := z.TagName()
			if !voidElements[string(name)] {
				stack = append(stack, string(name))
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if len(stack) == 0 {
				return fmt.Errorf("unexpected </%s>", name)
			}
			if top := stack[len(stack)-1]; top != string(name) {
				return fmt.Errorf("</%s> closes <%s>", name, top)
			}
			stack = stack[:len(stack)-1]
		}
	}
}

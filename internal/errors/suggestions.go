package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorSuggestion represents a suggestion for fixing an error
type ErrorSuggestion struct {
	Title   string
	Command string
}

// Suggestions returns hints for the first GoaError in err's chain, keyed by
// its code. Unknown codes yield nil.
func Suggestions(err error) []ErrorSuggestion {
	var ge *GoaError
	if !errors.As(err, &ge) {
		return nil
	}

	switch ge.Code {
	case CodeEmptyPath:
		return []ErrorSuggestion{
			{Title: "Pass the path as an argument", Command: "goa route page new about"},
		}
	case CodeInvalidSegment:
		return []ErrorSuggestion{
			{Title: "Segments may contain letters, digits, '-' and '_'; wrap parameters in brackets", Command: "goa route api new users/[id]"},
		}
	case CodeUnsupportedNesting:
		return []ErrorSuggestion{
			{Title: "Components are flat; use a single name such as product-card"},
		}
	case CodeDuplicateParam:
		return []ErrorSuggestion{
			{Title: "Give each dynamic segment a distinct name", Command: "goa route api new users/[userId]/posts/[postId]"},
		}
	case CodeReservedSegment:
		input := contextString(ge, "input")
		if rest, ok := strings.CutPrefix(input, "api/"); ok {
			return []ErrorSuggestion{
				{Title: "API routes have their own command", Command: "goa route api new " + rest},
			}
		}
		return []ErrorSuggestion{
			{Title: "Pick a page path outside the API and component directories"},
		}
	case CodeConflict:
		return []ErrorSuggestion{
			{Title: "Choose another path, or delete the existing one first", Command: "goa project list"},
		}
	case CodeNotFound:
		return []ErrorSuggestion{
			{Title: "See what exists", Command: "goa project list"},
		}
	case CodeProjectNotFound:
		return []ErrorSuggestion{
			{Title: "Run goa inside a Go on Airplanes project, or point at one", Command: "goa --project ./myapp project list"},
		}
	case CodeConfigInvalid:
		if field := contextString(ge, "field"); field != "" {
			return []ErrorSuggestion{{Title: fmt.Sprintf("Check %s in .goa.yml or GOA_* variables", field)}}
		}
	}

	return nil
}

func contextString(ge *GoaError, key string) string {
	if ge.Context == nil {
		return ""
	}
	if v, ok := ge.Context[key]; ok {
		return fmt.Sprint(v)
	}
	return ""
}

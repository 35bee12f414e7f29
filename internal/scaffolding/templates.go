package scaffolding

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/kleeedolinux/goa-cli/internal/pathspec"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Templates use [[ ]] delimiters so the framework's own {{ }} actions pass
// through as literal text.
const (
	leftDelim  = "[["
	rightDelim = "]]"
)

// FileTemplate is the boilerplate for one kind of generated file.
type FileTemplate struct {
	Name        string
	Description string
	Content     string
}

// TemplateContext holds the values available to a FileTemplate.
type TemplateContext struct {
	// Name is the last segment of the path.
	Name string
	// Title is a human readable form of Name.
	Title string
	// Route is the URL path the framework serves the entity at.
	Route      string
	Params     []string
	ModulePath string
	AppName    string
}

var builtinTemplates = map[string]FileTemplate{
	"api": {
		Name:        "api",
		Description: "API route handler",
		Content: `package api

import (
	"net/http"
	"time"

	"[[.ModulePath]]/core"
)

func Handler(ctx *core.APIContext) {
	response := map[string]interface{}{
		"message":   "Hello from [[.Route]]",
		"timestamp": time.Now().Format(time.RFC3339),
		"method":    ctx.Request.Method,
		"path":      ctx.Request.URL.Path,
		"params":    ctx.Params,
		"success":   true,
	}

	ctx.Success(response, http.StatusOK)
}
`,
	},
	"page": {
		Name:        "page",
		Description: "Static page",
		Content: `{{ define "content" }}
<div class="max-w-4xl mx-auto">
    <h2 class="text-2xl font-bold mb-6">[[.Title]]</h2>
    <p class="mb-4">This page is served at <code>[[.Route]]</code>.</p>
    <a href="/" class="text-blue-600 hover:text-blue-800">&larr; Back to home</a>
</div>
{{ end }}
`,
	},
	"page-dynamic": {
		Name:        "page-dynamic",
		Description: "Page with route parameters",
		Content: `{{ define "content" }}
<div class="max-w-4xl mx-auto">
    <h2 class="text-2xl font-bold mb-6">[[.Title]]</h2>
    <div class="bg-white overflow-hidden shadow rounded-lg">
        <div class="px-4 py-5 sm:p-6">
[[- range .Params]]
            <p class="mt-2 text-sm text-gray-500">Value of <code>[[.]]</code>:</p>
            <div class="mt-2 p-4 bg-gray-100 rounded">
                <code class="text-lg font-mono">{{ index .Params "[[.]]" }}</code>
            </div>
[[- end]]
        </div>
    </div>
    <a href="/" class="text-blue-600 hover:text-blue-800">&larr; Back to home</a>
</div>
{{ end }}
`,
	},
	"component": {
		Name:        "component",
		Description: "Reusable component",
		Content: `{{ define "[[.Name]]" }}
<div class="bg-white overflow-hidden shadow rounded-lg">
    <div class="px-4 py-5 sm:p-6">
        {{.}}
    </div>
</div>
{{ end }}
`,
	},
}

// BuiltinTemplates returns a copy of the built-in templates keyed by name.
func BuiltinTemplates() map[string]FileTemplate {
	out := make(map[string]FileTemplate, len(builtinTemplates))
	for k, v := range builtinTemplates {
		out[k] = v
	}
	return out
}

// templateFor picks the template a spec is rendered with.
func templateFor(spec pathspec.PathSpec) FileTemplate {
	switch spec.Kind {
	case pathspec.KindAPIRoute:
		return builtinTemplates["api"]
	case pathspec.KindPageRoute:
		if spec.IsDynamic() {
			return builtinTemplates["page-dynamic"]
		}
		return builtinTemplates["page"]
	default:
		return builtinTemplates["component"]
	}
}

// Render executes the template for spec.
func Render(spec pathspec.PathSpec, ctx TemplateContext) ([]byte, error) {
	ft := templateFor(spec)

	tmpl, err := template.New(ft.Name).Delims(leftDelim, rightDelim).Option("missingkey=error").Parse(ft.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", ft.Name, err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, ctx); err != nil {
		return nil, fmt.Errorf("failed to execute %s template: %w", ft.Name, err)
	}

	return []byte(b.String()), nil
}

// NewTemplateContext builds the context for spec.
func NewTemplateContext(spec pathspec.PathSpec, modulePath, appName string) TemplateContext {
	return TemplateContext{
		Name:       spec.Name(),
		Title:      Title(spec.Name()),
		Route:      RoutePath(spec),
		Params:     spec.Params(),
		ModulePath: modulePath,
		AppName:    appName,
	}
}

var titleCaser = cases.Title(language.English)

// Title turns an identifier like "user-profile" into "User Profile".
func Title(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	return titleCaser.String(strings.Join(words, " "))
}

// RoutePath returns the URL the framework serves spec at. Dynamic segments
// keep their bracket form. Components have no route.
func RoutePath(spec pathspec.PathSpec) string {
	switch spec.Kind {
	case pathspec.KindAPIRoute:
		return "/api/" + spec.Raw()
	case pathspec.KindPageRoute:
		return "/" + spec.Raw()
	default:
		return ""
	}
}

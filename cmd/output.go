package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kleeedolinux/goa-cli/internal/pathspec"
	"github.com/kleeedolinux/goa-cli/internal/scaffolding"
	"github.com/kleeedolinux/goa-cli/internal/scanner"
	"gopkg.in/yaml.v3"
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#059669", Dark: "#10B981"})
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E0B"})
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"})
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"})
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"})
	styleBox     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"}).
			Padding(0, 2)
)

// printer writes user-facing results. Styling is applied only when the
// output is a terminal.
type printer struct {
	w      io.Writer
	styled bool
}

func newPrinter(w io.Writer) *printer {
	d := GetDeps()
	return &printer{w: w, styled: d != nil && d.Interactive}
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

func (p *printer) success(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s %s\n", p.render(styleSuccess, "✓"), fmt.Sprintf(format, args...))
}

func (p *printer) note(format string, args ...interface{}) {
	fmt.Fprintln(p.w, p.render(styleMuted, fmt.Sprintf(format, args...)))
}

func (p *printer) warn(format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s %s\n", p.render(styleWarn, "!"), fmt.Sprintf(format, args...))
}

// inventoryView is the machine-readable form of an inventory.
type inventoryView struct {
	APIRoutes  []entryView `json:"apiRoutes" yaml:"apiRoutes"`
	PageRoutes []entryView `json:"pageRoutes" yaml:"pageRoutes"`
	Components []entryView `json:"components" yaml:"components"`
	IndexPage  bool        `json:"indexPage" yaml:"indexPage"`
}

type entryView struct {
	Path     string   `json:"path" yaml:"path"`
	Route    string   `json:"route,omitempty" yaml:"route,omitempty"`
	Segments []string `json:"segments" yaml:"segments"`
	Params   []string `json:"params,omitempty" yaml:"params,omitempty"`
}

func newInventoryView(inv *scanner.Inventory) inventoryView {
	view := func(specs []pathspec.PathSpec) []entryView {
		out := make([]entryView, 0, len(specs))
		for _, s := range specs {
			out = append(out, entryView{
				Path:     s.Raw(),
				Route:    scaffolding.RoutePath(s),
				Segments: s.Names(),
				Params:   s.Params(),
			})
		}
		return out
	}

	return inventoryView{
		APIRoutes:  view(inv.APIRoutes),
		PageRoutes: view(inv.PageRoutes),
		Components: view(inv.Components),
		IndexPage:  inv.IndexPage,
	}
}

// writeInventory prints inv in the requested format.
func writeInventory(w io.Writer, inv *scanner.Inventory, format string, styled bool) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newInventoryView(inv))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newInventoryView(inv)); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := io.WriteString(w, renderInventory(inv, styled))
		return err
	}
}

var sectionTitles = map[pathspec.Kind]string{
	pathspec.KindAPIRoute:  "API routes",
	pathspec.KindPageRoute: "Page routes",
	pathspec.KindComponent: "Components",
}

// renderInventory returns the table form: one section per kind.
func renderInventory(inv *scanner.Inventory, styled bool) string {
	var sections []string

	for _, kind := range pathspec.Kinds {
		specs := inv.Of(kind)

		var b strings.Builder
		title := fmt.Sprintf("%s (%d)", sectionTitles[kind], len(specs))
		if kind == pathspec.KindPageRoute && inv.IndexPage {
			title = fmt.Sprintf("%s (%d + index)", sectionTitles[kind], len(specs))
		}
		if styled {
			title = styleTitle.Render(title)
		}
		b.WriteString(title + "\n")

		if kind == pathspec.KindPageRoute && inv.IndexPage {
			b.WriteString("  /\n")
		}
		if len(specs) == 0 && !(kind == pathspec.KindPageRoute && inv.IndexPage) {
			none := "  (none)"
			if styled {
				none = styleMuted.Render(none)
			}
			b.WriteString(none + "\n")
		}
		for _, s := range specs {
			line := "  " + s.Raw()
			if route := scaffolding.RoutePath(s); route != "" {
				arrow := "  -> " + route
				if styled {
					arrow = styleMuted.Render(arrow)
				}
				line += arrow
			}
			b.WriteString(line + "\n")
		}

		section := strings.TrimRight(b.String(), "\n")
		if styled {
			section = styleBox.Render(section)
		}
		sections = append(sections, section)
	}

	if styled {
		return strings.Join(sections, "\n") + "\n"
	}
	return strings.Join(sections, "\n\n") + "\n"
}

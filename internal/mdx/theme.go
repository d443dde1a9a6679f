package mdx

import (
	"bytes"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// Theme selects which of the two highlight token sets is active.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme maps any value other than "dark" to ThemeLight.
func ParseTheme(s string) Theme {
	if strings.EqualFold(strings.TrimSpace(s), string(ThemeDark)) {
		return ThemeDark
	}
	return ThemeLight
}

// Class is the CSS class scoping the theme's token colors.
func (t Theme) Class() string {
	return "theme-" + string(ParseTheme(string(t)))
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if ParseTheme(string(t)) == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ThemeCSS returns the stylesheet for both token sets. Each chroma style is
// scoped under its theme class so that switching the class on the rendered
// tree switches code colors without recompiling any body.
func ThemeCSS(light, dark string) (string, error) {
	formatter := chromahtml.New(chromahtml.WithClasses(true))

	var out strings.Builder
	for _, set := range []struct {
		theme Theme
		style string
	}{{ThemeLight, light}, {ThemeDark, dark}} {
		var buf bytes.Buffer
		if err := formatter.WriteCSS(&buf, styles.Get(set.style)); err != nil {
			return "", fmt.Errorf("mdx: write %s highlight css: %w", set.theme, err)
		}
		scope := "." + set.theme.Class()
		css := strings.ReplaceAll(buf.String(), ".chroma", scope+" .chroma")
		css = strings.ReplaceAll(css, " .bg ", " "+scope+" .bg ")
		fmt.Fprintf(&out, "/* %s: %s */\n%s\n", set.theme, set.style, css)
	}
	return out.String(), nil
}

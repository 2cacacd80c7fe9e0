package frontmatter

// Meta is the typed view of the front-matter keys docsite understands.
// Unknown keys stay available through Document.Fields and the macro page variables.
type Meta struct {
	Title        string     `yaml:"title"`
	Description  string     `yaml:"description"`
	Template     string     `yaml:"template"`
	Tags         []string   `yaml:"tags"`
	Hide         []string   `yaml:"hide"`
	Search       SearchMeta `yaml:"search"`
	RenderMacros *bool      `yaml:"render_macros"`
	Fingerprint  string     `yaml:"fingerprint"`
	Date         string     `yaml:"date"`
}

// SearchMeta holds per-page search directives.
type SearchMeta struct {
	Exclude bool    `yaml:"exclude"`
	Boost   float64 `yaml:"boost"`
}

// Hides reports whether a theme element (navigation, toc) is hidden for the page.
func (m Meta) Hides(element string) bool {
	for _, h := range m.Hide {
		if h == element {
			return true
		}
	}
	return false
}

// MacrosEnabled resolves render_macros against the site-wide setting.
func (m Meta) MacrosEnabled(siteDefault bool) bool {
	if m.RenderMacros == nil {
		return siteDefault
	}
	return *m.RenderMacros
}

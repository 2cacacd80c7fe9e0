package markdown

// Options controls how Markdown is parsed for link analysis.
type Options struct{}

// LinkKind classifies the Markdown construct a link came from.
type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReference           LinkKind = "reference"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
)

// Link is a link-like construct found by ExtractLinks.
type Link struct {
	Kind        LinkKind
	Destination string
}

// LinkStatus is the resolution outcome of a link recorded during rendering.
type LinkStatus string

const (
	// StatusPage links resolved to an existing page (fragment not yet checked).
	StatusPage LinkStatus = "page"
	// StatusAnchor links point at a fragment of the current page.
	StatusAnchor       LinkStatus = "anchor"
	StatusAsset        LinkStatus = "asset"
	StatusExternal     LinkStatus = "external"
	StatusAbsolute     LinkStatus = "absolute"
	StatusNotFound     LinkStatus = "not_found"
	StatusUnrecognized LinkStatus = "unrecognized"
)

// PageLink is a link found while rendering a page, with its resolution.
type PageLink struct {
	Kind        LinkKind
	Destination string
	// Target is the docs-relative source of the linked page or asset, when resolved.
	Target   string
	Fragment string
	// Href is the destination written to the HTML output.
	Href   string
	Status LinkStatus
	Line   int
}

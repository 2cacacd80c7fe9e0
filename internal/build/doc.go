// Package build runs the site generation pipeline.
//
// A build walks fixed stages (discover, nav, redirects, macros, render, assets, search,
// sitemap, write). Output goes to a staging directory next to site_dir and replaces it
// in one rename once every stage has succeeded, so a failed build never leaves a
// half-written site. Every run produces a Report persisted to report_dir.
package build

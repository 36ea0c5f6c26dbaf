// Package report renders schema summaries for people: Markdown through
// pongo2 templates, and HTML converted from that Markdown.
package report

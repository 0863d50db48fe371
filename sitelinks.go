// Package sitelinks discovers the reachable URLs of a website. It prefers
// the site's declared sitemaps and falls back to a rendered, host-scoped
// crawl when no sitemap yields links. The result is a deduplicated, sorted
// link list persisted as a single JSON artifact.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, robotstxt/).
package sitelinks

// Package kindlefeed collects saved article links from a Notion database,
// extracts the readable part of each page and mails the result to a Kindle
// as one indexed HTML document.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., notion/, readability/, sqlite/).
package kindlefeed

// Package archive resolves San Francisco government meeting identities to
// concrete feed entries.
//
// A Source is a static table entry mapping a symbolic body name (such as
// BOARD_OF_SUPERVISORS) to the numeric view id from which every feed and
// player URL is derived. A Resolver fetches a source's audio, video and
// agenda feeds once at construction and answers date-to-URL lookups over
// them, tolerating the archive's habit of publishing an entry the day
// after the meeting happened.
package archive

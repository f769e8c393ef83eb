// Package notify schedules local task reminders. A Platform abstracts
// the host notification facility; the default spool platform records
// pending requests in the key-value store so other tooling can drain
// them, and the noop platform swallows everything on hosts without
// notification support.
package notify

// Package model defines the task, project, and category entities and
// their persisted record shapes.
//
// Entities hold parsed values (time.Time dates, defaulted ordinals) and
// are what the stores and UI operate on. Records are the JSON shapes
// written to storage: dates become RFC 3339 strings and optional fields
// stay pointers so older payloads without them still load.
//
// The persisted collections are JSON arrays:
//
//	[
//	  {
//	    "id": 1,
//	    "title": "Task title",
//	    "description": "...",
//	    "status": "todo",
//	    "priority": "high",
//	    "created_at": "2024-01-01T00:00:00Z",
//	    "due_date": "2024-01-10T00:00:00Z",
//	    "category": "Studies",
//	    "tags": ["go"],
//	    "project_id": 2,
//	    "ordinal": 0
//	  }
//	]
//
// # Status Values
//
//   - "todo": task is pending
//   - "in_progress": task is being worked on
//   - "done": task is complete
//
// # Priority Values
//
//   - "low", "medium", "high"
//
// Records missing "ordinal" or "project_id" are normalized at load time:
// the ordinal defaults to the record's position in load order and the
// project reference stays unset.
package model

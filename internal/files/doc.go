// Package files resolves the newest file in a remote folder.
//
// Inspector is the only type most callers need. Given an open remote.Conn and
// a domain.FolderTask it lists the folder, keeps regular files, and returns a
// single domain.Outcome:
//
//	found  the newest qualifying file (ties go to the greatest name)
//	empty  no candidate file; Note says why
//	error  the listing failed; Detail carries the classification
//
// A Selection narrows candidates by calendar day. With Fallback set, a dated
// selection that matches nothing reports the newest file overall and records
// the substitution in the outcome's Note.
//
// Example usage:
//
//	inspector := files.NewInspector(files.OnDate(time.Now(), true), logger)
//	outcome := inspector.Inspect(ctx, conn, task)
package files

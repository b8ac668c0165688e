// Package usercopy persists user-edited copies of lab programs.
//
// Each copy is a single string keyed by (subjectID, programID). Copies are
// created and overwritten on save, read back when a program is opened, and
// never deleted automatically. Three backends are available: an in-process
// map, Redis, and a sqlite file.
package usercopy

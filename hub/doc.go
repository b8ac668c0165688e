// Package hub ties the program catalog, the snippet composer, the user copy
// store and the execution sandbox together behind one Service.
//
// The Service has no notion of a current selection: every operation takes
// the subject and program identifiers it acts on. An unknown identifier
// makes the operation a no-op, reported through its ok return value.
package hub

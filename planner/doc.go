// Package planner decides which tasks show up on which calendar day, in what
// order, and whether a status change (typically a kanban drag) is allowed.
//
// Everything here works on an immutable snapshot of one owner's tasks; the
// only side effect is the store write done by Gate.Transition.
package planner

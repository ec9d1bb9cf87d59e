// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package merge decides what happens when a detected chapter meets a stored one.

[Resolve] is pure: it never touches storage. The chapter service applies the
returned [Decision] to its repository.
*/
package merge

import (
	"fmt"

	"github.com/taibuivan/novelvault/internal/platform/apperr"
)

// # Actions

// Action is the user's choice for a clashing chapter.
type Action string

const (
	// ActionDefault behaves like ActionOverwrite.
	ActionDefault     Action = ""
	ActionOverwrite   Action = "overwrite"
	ActionDiscard     Action = "discard"
	ActionNewNumber   Action = "new_number"
	ActionKeepLongest Action = "keep_longest"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionDefault, ActionOverwrite, ActionDiscard, ActionNewNumber, ActionKeepLongest:
		return true
	}
	return false
}

// # Outcomes

// Outcome is the storage operation chosen by [Resolve].
type Outcome string

const (
	OutcomeCreate   Outcome = "create"
	OutcomeUpdate   Outcome = "update"
	OutcomeSkip     Outcome = "skip"
	OutcomeRenumber Outcome = "renumber"
)

// Snapshot is the part of a chapter the resolver needs.
type Snapshot struct {
	Series        string
	Number        int
	IsFinal       bool
	ContentLength int // In characters
}

// Decision is the result of a resolution.
type Decision struct {
	Outcome         Outcome `json:"outcome"`
	EffectiveNumber int     `json:"effective_number"`
}

/*
Resolve chooses the storage outcome for a candidate chapter.

Parameters:
  - existing: *Snapshot (Stored chapter with the same key, nil when there is none)
  - candidate: Snapshot (Newly detected chapter)
  - action: Action (User choice for the clash)
  - newNumber: *int (Target number, required for ActionNewNumber)

Returns:
  - Decision: Outcome and the number the chapter is stored under
  - error: apperr.InvalidArgument for unknown actions or an unusable newNumber
*/
func Resolve(existing *Snapshot, candidate Snapshot, action Action, newNumber *int) (Decision, error) {
	if !action.Valid() {
		return Decision{}, apperr.InvalidArgument(fmt.Sprintf("Unknown merge action %q", string(action)))
	}

	if existing == nil {
		return Decision{Outcome: OutcomeCreate, EffectiveNumber: candidate.Number}, nil
	}

	switch action {
	case ActionDiscard:
		return Decision{Outcome: OutcomeSkip, EffectiveNumber: existing.Number}, nil

	case ActionNewNumber:
		if newNumber == nil {
			return Decision{}, apperr.InvalidArgument("new_number requires a target number")
		}
		if *newNumber <= 0 {
			return Decision{}, apperr.InvalidArgument("new_number must be a positive chapter number")
		}
		if *newNumber == existing.Number && !existing.IsFinal {
			return Decision{}, apperr.InvalidArgument("new_number must differ from the existing chapter number")
		}
		return Decision{Outcome: OutcomeRenumber, EffectiveNumber: *newNumber}, nil

	case ActionKeepLongest:
		if candidate.ContentLength > existing.ContentLength {
			return Decision{Outcome: OutcomeUpdate, EffectiveNumber: existing.Number}, nil
		}
		return Decision{Outcome: OutcomeSkip, EffectiveNumber: existing.Number}, nil

	default:
		return Decision{Outcome: OutcomeUpdate, EffectiveNumber: existing.Number}, nil
	}
}

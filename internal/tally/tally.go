// Package tally counts, per noun surface form, how often the noun occurred
// in an informational reading and how often in an eventuality reading.
//
// A Noun is created by the occurrence that first matched a pattern, so one
// of its counters always starts at 1. Counters only ever grow. The derived
// classifications (Type, PrimaryType) are pure functions of the two counts.
package tally

import (
	"github.com/cockroachdb/errors"
)

// Kind is the reading a single matched occurrence was assigned
type Kind string

const (
	KindInfo  Kind = "info"
	KindEvent Kind = "event"
)

// Valid reports whether k is one of the two occurrence kinds
func (k Kind) Valid() bool {
	return k == KindInfo || k == KindEvent
}

// Type summarises which readings a noun has been observed in
type Type string

const (
	TypeInfo  Type = "info"
	TypeEvent Type = "event"
	TypeBoth  Type = "both"
	TypeNone  Type = "none" // Never observed; unreachable through New and the increments
)

// Primary is the predominant reading of a noun observed in both readings
type Primary string

const (
	PrimaryInfo  Primary = "info"
	PrimaryEvent Primary = "event"
	PrimaryEqual Primary = "equal"
)

// Noun is the running tally for one noun surface form
type Noun struct {
	info  int
	event int
}

// New creates a tally for the occurrence that first matched.
//
// kind must be KindInfo or KindEvent. Any other value is a bug in the
// caller, so New panics with an assertion failure naming the value.
func New(kind Kind) *Noun {
	switch kind {
	case KindInfo:
		return &Noun{info: 1}
	case KindEvent:
		return &Noun{event: 1}
	default:
		panic(errors.AssertionFailedf("invalid tally kind %q", string(kind)))
	}
}

// IncrementInfo records one more informational occurrence
func (n *Noun) IncrementInfo() {
	n.info++
}

// IncrementEvent records one more eventuality occurrence
func (n *Noun) IncrementEvent() {
	n.event++
}

// Increment records one occurrence of the given kind. Like New it panics
// on a kind that is neither info nor event.
func (n *Noun) Increment(kind Kind) {
	switch kind {
	case KindInfo:
		n.IncrementInfo()
	case KindEvent:
		n.IncrementEvent()
	default:
		panic(errors.AssertionFailedf("invalid tally kind %q", string(kind)))
	}
}

// InfoCount returns the number of informational occurrences
func (n *Noun) InfoCount() int {
	return n.info
}

// EventCount returns the number of eventuality occurrences
func (n *Noun) EventCount() int {
	return n.event
}

// Merge adds the counts of other into n. Merging is associative and
// commutative, so partial tallies may be combined in any order.
func (n *Noun) Merge(other *Noun) {
	if other == nil {
		return
	}
	n.info += other.info
	n.event += other.event
}

// Type classifies the noun by which counters are non-zero
func (n *Noun) Type() Type {
	return TypeOf(n.info, n.event)
}

// PrimaryType returns the larger side, or PrimaryEqual on a tie
func (n *Noun) PrimaryType() Primary {
	return PrimaryOf(n.info, n.event)
}

// TypeOf is the four-way case split behind Noun.Type
func TypeOf(info, event int) Type {
	switch {
	case info > 0 && event == 0:
		return TypeInfo
	case event > 0 && info == 0:
		return TypeEvent
	case info > 0 && event > 0:
		return TypeBoth
	default:
		return TypeNone
	}
}

// PrimaryOf is the comparison behind Noun.PrimaryType
func PrimaryOf(info, event int) Primary {
	switch {
	case info > event:
		return PrimaryInfo
	case event > info:
		return PrimaryEvent
	default:
		return PrimaryEqual
	}
}

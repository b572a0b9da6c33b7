// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

// Package response provides the tagged response registry and the emitter that
// renders and routes response lines to the primary and diagnostic channels.
package response

// Tag identifies a kind of response line.
type Tag int

// Response tags. 'Pull' tags answer a client command; 'push' tags are
// initiated by the host.
const (
	Okay Tag = iota // success acknowledgement
	What            // user input error
	Nope            // request rejected by policy
	Fail            // environment-level failure
	Oops            // internal/programmer error
	Ohai            // host greeting
	Ttfn            // host farewell
	Stat            // state change
	Time            // time report
	Dbug            // diagnostic trace

	numTags
)

// Descriptor holds the label and routing for one response tag.
type Descriptor struct {
	Tag        Tag
	Name       string // 4-character wire label
	Primary    bool   // routed to the primary (client) channel
	Diagnostic bool   // routed to the diagnostic (log) channel
}

// registry is indexed by Tag and never mutated.
var registry = [numTags]Descriptor{
	Okay: {Tag: Okay, Name: "okay", Primary: true},
	What: {Tag: What, Name: "what", Primary: true},
	Nope: {Tag: Nope, Name: "nope", Primary: true},
	Fail: {Tag: Fail, Name: "fail", Primary: true, Diagnostic: true},
	Oops: {Tag: Oops, Name: "oops", Primary: true, Diagnostic: true},
	Ohai: {Tag: Ohai, Name: "ohai", Primary: true},
	Ttfn: {Tag: Ttfn, Name: "ttfn", Primary: true},
	Stat: {Tag: Stat, Name: "stat", Primary: true},
	Time: {Tag: Time, Name: "time", Primary: true},
	Dbug: {Tag: Dbug, Name: "dbug", Diagnostic: true},
}

// Lookup returns the descriptor for tag.
// Returns false if tag is not a known response tag.
func Lookup(tag Tag) (Descriptor, bool) {
	if tag < 0 || tag >= numTags {
		return Descriptor{}, false
	}
	return registry[tag], true
}

// Tags returns every known tag in declaration order.
func Tags() []Tag {
	tags := make([]Tag, 0, numTags)
	for t := Tag(0); t < numTags; t++ {
		tags = append(tags, t)
	}
	return tags
}

// ParseTag returns the tag with the given wire label.
func ParseTag(name string) (Tag, bool) {
	for _, d := range registry {
		if d.Name == name {
			return d.Tag, true
		}
	}
	return 0, false
}

// String returns the wire label, or "????" for unknown tags.
func (t Tag) String() string {
	d, ok := Lookup(t)
	if !ok {
		return "????"
	}
	return d.Name
}

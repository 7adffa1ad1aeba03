package model

import (
	"fmt"
	"strings"
)

// OwnerKind identifies which entity an embedding or search hit belongs to.
type OwnerKind string

const (
	OwnerKindBook     OwnerKind = "book"
	OwnerKindNote     OwnerKind = "note"
	OwnerKindReview   OwnerKind = "review"
	OwnerKindFileText OwnerKind = "file_text"
)

var ownerKinds = []OwnerKind{OwnerKindBook, OwnerKindNote, OwnerKindReview, OwnerKindFileText}

func OwnerKinds() []OwnerKind {
	out := make([]OwnerKind, len(ownerKinds))
	copy(out, ownerKinds)
	return out
}

func ParseOwnerKind(value string) (OwnerKind, error) {
	kind := OwnerKind(strings.ToLower(strings.TrimSpace(value)))
	for _, k := range ownerKinds {
		if k == kind {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown owner kind: %q", value)
}

// OwnerRef points at exactly one owner. Fields are unexported so a ref can
// only be built through the constructors below.
type OwnerRef struct {
	kind OwnerKind
	id   string
}

func NewOwnerRef(kind OwnerKind, id string) (OwnerRef, error) {
	if _, err := ParseOwnerKind(string(kind)); err != nil {
		return OwnerRef{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return OwnerRef{}, fmt.Errorf("owner id is required")
	}
	return OwnerRef{kind: kind, id: id}, nil
}

func BookOwner(id string) OwnerRef     { return OwnerRef{kind: OwnerKindBook, id: id} }
func NoteOwner(id string) OwnerRef     { return OwnerRef{kind: OwnerKindNote, id: id} }
func ReviewOwner(id string) OwnerRef   { return OwnerRef{kind: OwnerKindReview, id: id} }
func FileTextOwner(id string) OwnerRef { return OwnerRef{kind: OwnerKindFileText, id: id} }

func (r OwnerRef) Kind() OwnerKind { return r.kind }
func (r OwnerRef) ID() string      { return r.id }

func (r OwnerRef) IsZero() bool {
	return r.kind == "" || r.id == ""
}

func (r OwnerRef) String() string {
	return string(r.kind) + ":" + r.id
}

package book

import (
	"fmt"
	"strings"
)

// Error types for graph construction and lookups. Construction errors name
// the offending record id, lookup errors name the key that failed.

// ReferenceError is returned when a record points at an id that is not in the
// record store.
type ReferenceError struct {
	Kind     string // "account" or "split"
	RecordID string
	Field    string // "parent" or "account"
	TargetID string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %s: %s references unknown account %s", e.Kind, e.RecordID, e.Field, e.TargetID)
}

func (e *ReferenceError) GetRecordID() string {
	return e.RecordID
}

func (e *ReferenceError) GetTargetID() string {
	return e.TargetID
}

// NewParentReferenceError reports an account whose parent does not exist.
func NewParentReferenceError(accountID, parentID string) *ReferenceError {
	return &ReferenceError{Kind: "account", RecordID: accountID, Field: "parent", TargetID: parentID}
}

// NewSplitReferenceError reports a split whose account does not exist.
func NewSplitReferenceError(splitID, accountID string) *ReferenceError {
	return &ReferenceError{Kind: "split", RecordID: splitID, Field: "account", TargetID: accountID}
}

// StructureError is returned when the account tree is not a tree with a
// single ROOT, or when record ids are reused.
type StructureError struct {
	RecordID string
	Reason   string
}

func (e *StructureError) Error() string {
	if e.RecordID == "" {
		return "book: " + e.Reason
	}
	return fmt.Sprintf("record %s: %s", e.RecordID, e.Reason)
}

func (e *StructureError) GetRecordID() string {
	return e.RecordID
}

func NewStructureError(recordID, reason string) *StructureError {
	return &StructureError{RecordID: recordID, Reason: reason}
}

// DuplicateNameError is returned when two siblings share a name.
type DuplicateNameError struct {
	RecordID   string
	ParentID   string
	ParentPath string
	Name       string
}

func (e *DuplicateNameError) Error() string {
	parent := e.ParentPath
	if parent == "" {
		parent = "root"
	}
	return fmt.Sprintf("account %s: %s already has a child named %q (parent %s)", e.RecordID, parent, e.Name, e.ParentID)
}

func (e *DuplicateNameError) GetRecordID() string {
	return e.RecordID
}

func (e *DuplicateNameError) GetName() string {
	return e.Name
}

func NewDuplicateNameError(recordID, parentID, parentPath, name string) *DuplicateNameError {
	return &DuplicateNameError{RecordID: recordID, ParentID: parentID, ParentPath: parentPath, Name: name}
}

// MissingCommodityError is returned for a non-root account without commodity.
type MissingCommodityError struct {
	RecordID string
	Name     string
}

func (e *MissingCommodityError) Error() string {
	return fmt.Sprintf("account %s: %q has no commodity", e.RecordID, e.Name)
}

func (e *MissingCommodityError) GetRecordID() string {
	return e.RecordID
}

func NewMissingCommodityError(recordID, name string) *MissingCommodityError {
	return &MissingCommodityError{RecordID: recordID, Name: name}
}

// AmbiguousError is returned when a lookup matches more than one object.
type AmbiguousError struct {
	Kind    string
	Key     string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%s %q is ambiguous: %s", e.Kind, e.Key, strings.Join(e.Matches, ", "))
}

func (e *AmbiguousError) GetKey() string {
	return e.Key
}

func NewAmbiguousError(kind, key string, matches []string) *AmbiguousError {
	return &AmbiguousError{Kind: kind, Key: key, Matches: matches}
}

// NotFoundError is returned when a lookup matches nothing.
type NotFoundError struct {
	Kind   string
	Key    string
	Parent string // for account paths: the path of the deepest account found
}

func (e *NotFoundError) Error() string {
	if e.Kind == "account" {
		parent := e.Parent
		if parent == "" {
			parent = "root"
		}
		return fmt.Sprintf("account %q not found under %s", e.Key, parent)
	}
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e *NotFoundError) GetKey() string {
	return e.Key
}

func NewNotFoundError(kind, key string) *NotFoundError {
	return &NotFoundError{Kind: kind, Key: key}
}

// NewAccountNotFoundError reports the first path segment that did not match.
func NewAccountNotFoundError(segment string, parent *Account) *NotFoundError {
	return &NotFoundError{Kind: "account", Key: segment, Parent: parent.Path()}
}

// ParseError is returned for malformed day strings, handles and patterns.
type ParseError struct {
	Input string
	What  string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid %s %q", e.What, e.Input)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.What, e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func NewParseError(input, what string, err error) *ParseError {
	return &ParseError{Input: input, What: what, Err: err}
}

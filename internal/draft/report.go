package draft

import "fmt"

// Paths address nodes of a draft tree in a Report, e.g. "services[1].name".
const (
	PathName         = "name"
	PathNIT          = "nit"
	PathEmail        = "email"
	PathValuePerHour = "valuePerHourUsd"
	PathFieldName    = "fieldName"
	PathFieldValue   = "fieldValue"
	PathCustomFields = "customFields"
	PathServices     = "services"
	PathCountries    = "countries"
)

// RowPath joins a collection, a row index and a leaf into a report path.
func RowPath(collection string, index int, leaf string) string {
	p := fmt.Sprintf("%s[%d]", collection, index)
	if leaf == "" {
		return p
	}
	return p + "." + leaf
}

// Issue is one failing field of a tree.
type Issue struct {
	Path    string
	Field   FieldID
	Failing Rule
}

// Message returns the user-facing text for the issue.
func (i Issue) Message() string {
	return Message(i.Field, Result{Failing: i.Failing})
}

// Report aggregates validation over a whole draft tree.
type Report struct {
	issues  []Issue
	missing []string
}

func (r *Report) check(path string, field FieldID, value string) {
	res := Check(field, value)
	if !res.OK {
		r.issues = append(r.issues, Issue{Path: path, Field: field, Failing: res.Failing})
	}
}

// require records collection as missing when it is structurally empty.
func (r *Report) require(collection string, length int) {
	if length == 0 {
		r.missing = append(r.missing, collection)
	}
}

// Valid is the conjunction of every field and every required collection.
func (r Report) Valid() bool {
	return len(r.issues) == 0 && len(r.missing) == 0
}

// Issues returns the failing fields in tree order.
func (r Report) Issues() []Issue {
	return append([]Issue(nil), r.issues...)
}

// Missing returns the paths of required collections that are empty.
func (r Report) Missing() []string {
	return append([]string(nil), r.missing...)
}

// Lookup returns the issue recorded for path.
func (r Report) Lookup(path string) (Issue, bool) {
	for _, issue := range r.issues {
		if issue.Path == path {
			return issue, true
		}
	}
	return Issue{}, false
}

// IsMissing reports whether the collection at path is required but empty.
func (r Report) IsMissing(path string) bool {
	for _, m := range r.missing {
		if m == path {
			return true
		}
	}
	return false
}

// Message returns the text for path, or "" when the node is valid.
func (r Report) Message(path string) string {
	if issue, ok := r.Lookup(path); ok {
		return issue.Message()
	}
	return ""
}

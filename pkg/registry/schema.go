// pkg/registry/schema.go
package registry

import (
	"sort"
	"time"
)

// ActivityRegistry documents the task types the worker manager serves
// so process modelers can see inputs, outputs and error codes.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one Zeebe job worker. Category doubles as the
// worker's package group under internal/workers.
type Activity struct {
	ID                   string     `json:"id"`
	DisplayName          string     `json:"displayName"`
	Description          string     `json:"description"`
	Category             Category   `json:"category"`
	Version              string     `json:"version"`
	TaskType             string     `json:"taskType"`
	ImplementationStatus Status     `json:"implementationStatus"`
	InputSchema          FieldTypes `json:"inputSchema"`
	OutputSchema         FieldTypes `json:"outputSchema"`
	ErrorCodes           []string   `json:"errorCodes"`
	Timeout              string     `json:"timeout"`
	Retries              int        `json:"retries"`
	Tags                 []string   `json:"tags"`
}

// TimeoutDuration parses Timeout. An empty timeout is zero, meaning the
// worker config default applies.
func (a Activity) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(a.Timeout)
}

// Category groups workers by the part of the chatbot they serve.
type Category string

const (
	CategoryChatbot Category = "chatbot"
	CategoryPolicy  Category = "policy"
	CategoryProfile Category = "profile"
)

var Categories = []Category{CategoryChatbot, CategoryPolicy, CategoryProfile}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Status tracks how far a documented worker is from being served.
type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusVerified   Status = "verified"
)

var Statuses = []Status{StatusPlanned, StatusInProgress, StatusCompleted, StatusVerified}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// FieldTypes is a flat process-variable schema: variable name to JSON
// type ("string", "integer", "number", "boolean", "object", "array").
type FieldTypes map[string]string

// Names returns the variable names in sorted order.
func (f FieldTypes) Names() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Package tech owns the technology collection: the record model, the
// persistent collection store, the import/export transcoder, and the
// filter/search projection.
package tech

import (
	"fmt"
	"strings"
	"time"
)

// Status is the learning state of a technology. It is a closed enum:
// construct values through the constants or ParseStatus so invalid states
// never reach the collection.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus validates a raw status string at an API boundary.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return Status(s), nil
	}
	return "", fmt.Errorf("tech: invalid status %q (want not-started, in-progress or completed)", s)
}

// Priority ranks how urgently a technology should be learned.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// ParsePriority validates a raw priority string at an API boundary.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return Priority(s), nil
	}
	return "", fmt.Errorf("tech: invalid priority %q (want low, medium, high or critical)", s)
}

// Technology is a single tracked technology record.
type Technology struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Status         Status   `json:"status"`
	Notes          string   `json:"notes"`
	Category       string   `json:"category"`
	Difficulty     string   `json:"difficulty"`
	Priority       Priority `json:"priority"`
	Deadline       string   `json:"deadline,omitempty"`       // ISO date or empty
	EstimatedHours int      `json:"estimatedHours,omitempty"` // 1-1000, 0 = unset
	CreatedAt      string   `json:"createdAt,omitempty"`      // ISO timestamp
	UpdatedAt      string   `json:"updatedAt,omitempty"`      // ISO timestamp
	IsFromAPI      bool     `json:"isFromApi"`
}

// NewID returns a fresh record id. User-created records are keyed by
// creation time in milliseconds, matching the export format's id space.
func NewID() int64 {
	return time.Now().UnixMilli()
}

// Timestamp formats t the way export documents carry timestamps.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// applyDefaults fills optional fields per the record contract: category
// "other", difficulty "beginner", priority "medium".
func (t *Technology) applyDefaults() {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	if t.Status == "" {
		t.Status = StatusNotStarted
	}
	if t.Category == "" {
		t.Category = "other"
	}
	if t.Difficulty == "" {
		t.Difficulty = "beginner"
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
}

// Seed returns the 8-item starter collection used on first run.
func Seed() []Technology {
	return []Technology{
		{ID: 1, Title: "React Components", Description: "Functional and class components, their lifecycle and methods", Status: StatusNotStarted, Category: "frontend"},
		{ID: 2, Title: "JSX Syntax", Description: "JSX syntax and embedding JavaScript expressions in markup", Status: StatusNotStarted, Category: "frontend"},
		{ID: 3, Title: "State Management", Description: "Component state with the useState and useEffect hooks", Status: StatusNotStarted, Category: "frontend"},
		{ID: 4, Title: "React Router", Description: "Navigation between pages in a single-page application", Status: StatusNotStarted, Category: "frontend"},
		{ID: 5, Title: "Node.js Basics", Description: "Server-side JavaScript fundamentals", Status: StatusNotStarted, Category: "backend"},
		{ID: 6, Title: "Express.js", Description: "Building server applications on Node.js", Status: StatusNotStarted, Category: "backend"},
		{ID: 7, Title: "Database Concepts", Description: "Working with databases", Status: StatusNotStarted, Category: "backend"},
		{ID: 8, Title: "REST API", Description: "Designing and consuming RESTful APIs", Status: StatusNotStarted, Category: "backend"},
	}
}

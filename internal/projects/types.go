package projects

import (
	"strconv"
	"time"
)

const (
	// StatusFieldName is the single select field that drives board columns.
	StatusFieldName = "Status"

	// StatusNone is the status reported for items with no Status value.
	StatusNone = "No Status"
)

// Item content types as reported by the API.
const (
	TypeIssue       = "ISSUE"
	TypePullRequest = "PULL_REQUEST"
	TypeDraftIssue  = "DRAFT_ISSUE"
)

// FieldKind tags which payload slot of a FieldValue is set.
type FieldKind string

const (
	FieldKindText         FieldKind = "text"
	FieldKindSingleSelect FieldKind = "single-select"
	FieldKindNumber       FieldKind = "number"
	FieldKindDate         FieldKind = "date"
)

// FieldValue is one populated project field on a task. Exactly one payload
// slot is set, named by Kind.
type FieldValue struct {
	Kind   FieldKind `json:"kind"`
	Text   string    `json:"text,omitempty"`
	Name   string    `json:"name,omitempty"`
	Number float64   `json:"number,omitempty"`
	Date   string    `json:"date,omitempty"`
}

// String renders the populated slot.
func (v FieldValue) String() string {
	switch v.Kind {
	case FieldKindText:
		return v.Text
	case FieldKindSingleSelect:
		return v.Name
	case FieldKindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case FieldKindDate:
		return v.Date
	}
	return ""
}

// Task is the flattened view of one board item. Status is promoted out of
// the field values; everything else populated lands in Fields.
type Task struct {
	ID         string                `json:"id"`
	DatabaseID int64                 `json:"database_id,omitempty"`
	Type       string                `json:"type"`
	Number     int                   `json:"number,omitempty"`
	Title      string                `json:"title"`
	Body       string                `json:"body,omitempty"`
	URL        string                `json:"url,omitempty"`
	State      string                `json:"state,omitempty"`
	Author     string                `json:"author,omitempty"`
	Assignees  []string              `json:"assignees,omitempty"`
	Labels     []string              `json:"labels,omitempty"`
	CreatedAt  time.Time             `json:"created_at,omitzero"`
	UpdatedAt  time.Time             `json:"updated_at,omitzero"`
	Status     string                `json:"status"`
	Fields     map[string]FieldValue `json:"fields,omitempty"`
}

// Field is a project field definition.
type Field struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	DataType string        `json:"dataType"`
	Options  []FieldOption `json:"options,omitempty"`
}

// FieldOption is one choice of a single select field.
type FieldOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Comment is one issue comment.
type Comment struct {
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskDetail is a Task plus its issue comments.
type TaskDetail struct {
	Task
	Comments []Comment `json:"comments,omitempty"`
}

// MoveOutcome is the result of moving one item in a batch. The move and the
// follow-up comment fail independently.
type MoveOutcome struct {
	ItemID     string
	Err        error
	Commented  bool
	CommentErr error
}

// OK reports whether the move itself succeeded.
func (o MoveOutcome) OK() bool {
	return o.Err == nil
}

// ProjectRef identifies a board resolved from its owner and number.
type ProjectRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Number int    `json:"number"`
	URL    string `json:"url"`
}

// PageInfo carries the pagination cursor state of a connection.
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// itemsPage is the response shape of queryProjectItems. A null node means
// the project does not exist.
type itemsPage struct {
	Node *struct {
		Items struct {
			PageInfo PageInfo   `json:"pageInfo"`
			Nodes    []itemNode `json:"nodes"`
		} `json:"items"`
	} `json:"node"`
}

type itemNode struct {
	ID          string      `json:"id"`
	DatabaseID  int64       `json:"databaseId"`
	Type        string      `json:"type"`
	Content     contentNode `json:"content"`
	FieldValues struct {
		Nodes []fieldValueNode `json:"nodes"`
	} `json:"fieldValues"`
}

type contentNode struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	URL       string    `json:"url"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Author    *struct {
		Login string `json:"login"`
	} `json:"author"`
	Assignees struct {
		Nodes []struct {
			Login string `json:"login"`
		} `json:"nodes"`
	} `json:"assignees"`
	Labels struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"labels"`
	Comments struct {
		Nodes []commentNode `json:"nodes"`
	} `json:"comments"`
}

type commentNode struct {
	Author *struct {
		Login string `json:"login"`
	} `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// fieldValueNode is the flattened union of the field value fragments. The
// populated pointer identifies which fragment matched; value nodes for field
// types outside the fragments decode as all-nil and are skipped.
type fieldValueNode struct {
	Text   *string  `json:"text"`
	Name   *string  `json:"name"`
	Number *float64 `json:"number"`
	Date   *string  `json:"date"`
	Field  struct {
		Name string `json:"name"`
	} `json:"field"`
}

// value converts the raw union member into a tagged FieldValue.
func (n fieldValueNode) value() (FieldValue, bool) {
	switch {
	case n.Text != nil:
		return FieldValue{Kind: FieldKindText, Text: *n.Text}, true
	case n.Name != nil:
		return FieldValue{Kind: FieldKindSingleSelect, Name: *n.Name}, true
	case n.Number != nil:
		return FieldValue{Kind: FieldKindNumber, Number: *n.Number}, true
	case n.Date != nil:
		return FieldValue{Kind: FieldKindDate, Date: *n.Date}, true
	}
	return FieldValue{}, false
}

// newTask flattens a raw item node into a Task.
func newTask(n itemNode) Task {
	t := Task{
		ID:         n.ID,
		DatabaseID: n.DatabaseID,
		Type:       n.Type,
		Number:     n.Content.Number,
		Title:      n.Content.Title,
		Body:       n.Content.Body,
		URL:        n.Content.URL,
		State:      n.Content.State,
		CreatedAt:  n.Content.CreatedAt,
		UpdatedAt:  n.Content.UpdatedAt,
		Status:     StatusNone,
		Fields:     make(map[string]FieldValue),
	}
	if n.Content.Author != nil {
		t.Author = n.Content.Author.Login
	}
	for _, a := range n.Content.Assignees.Nodes {
		t.Assignees = append(t.Assignees, a.Login)
	}
	for _, l := range n.Content.Labels.Nodes {
		t.Labels = append(t.Labels, l.Name)
	}

	for _, fv := range n.FieldValues.Nodes {
		value, ok := fv.value()
		if !ok {
			continue
		}
		if fv.Field.Name == StatusFieldName {
			if value.Kind == FieldKindSingleSelect {
				t.Status = value.Name
			}
			continue
		}
		t.Fields[fv.Field.Name] = value
	}
	return t
}

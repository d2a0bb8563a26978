package model

import (
	"reflect"
	"testing"
	"time"
)

func TestNewMetadataRow_CleansCommas(t *testing.T) {
	tests := []struct {
		title      string
		author     string
		wantTitle  string
		wantAuthor string
	}{
		{"Plain Title", "someone", "Plain Title", "someone"},
		{"Jump, Run, Repeat", "a,b", "Jump  Run  Repeat", "a b"},
		{",leading", "trailing,", " leading", "trailing "},
		{"", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			row := NewMetadataRow(tt.title, 1, tt.author, time.Time{}, time.Time{}, nil, nil)
			if row.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", row.Title, tt.wantTitle)
			}
			if row.Author != tt.wantAuthor {
				t.Errorf("Author = %q, want %q", row.Author, tt.wantAuthor)
			}
		})
	}
}

func TestMetadataRow_Fields(t *testing.T) {
	created := time.Date(2013, 5, 8, 21, 4, 36, 0, time.UTC)
	modified := time.Date(2014, 1, 2, 3, 4, 5, 0, time.UTC)
	parent := ProjectID(555)

	row := NewMetadataRow("Maze Game", 104, "mres", created, modified, &parent, nil)
	got := row.Fields()
	want := []string{
		"Maze Game",
		"104",
		"mres",
		"2013-05-08T21:04:36Z",
		"2014-01-02T03:04:05Z",
		"555",
		"",
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() = %v, want %v", got, want)
	}
	if len(got) != len(DatasetHeader) {
		t.Errorf("Fields() has %d cells, header has %d columns", len(got), len(DatasetHeader))
	}
}

func TestMetadataRow_Fields_EmptyOptionals(t *testing.T) {
	row := NewMetadataRow("Untitled", 9, "", time.Time{}, time.Time{}, nil, nil)
	got := row.Fields()

	for _, i := range []int{3, 4, 5, 6} {
		if got[i] != "" {
			t.Errorf("Fields()[%d] = %q, want empty cell", i, got[i])
		}
	}
}

func TestProjectInfo_Row(t *testing.T) {
	root := ProjectID(10)
	info := &ProjectInfo{
		ID:          104,
		Token:       "abc123",
		Title:       "One, Two",
		Author:      "mres",
		CreatedAt:   time.Date(2013, 5, 8, 21, 4, 36, 0, time.UTC),
		RemixRootID: &root,
	}

	row := info.Row()
	if row.ID != 104 {
		t.Errorf("Row().ID = %v, want 104", row.ID)
	}
	if row.Title != "One  Two" {
		t.Errorf("Row().Title = %q, want comma-free title", row.Title)
	}
	if row.RemixParentID != nil {
		t.Errorf("Row().RemixParentID = %v, want nil", *row.RemixParentID)
	}
	if row.RemixRootID == nil || *row.RemixRootID != 10 {
		t.Error("Row().RemixRootID should carry the root project id")
	}
}

func TestProjectID_String(t *testing.T) {
	if got := ProjectID(1043015197).String(); got != "1043015197" {
		t.Errorf("String() = %q, want %q", got, "1043015197")
	}
}

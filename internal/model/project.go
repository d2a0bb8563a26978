package model

import (
	"strconv"
	"strings"
	"time"
)

// ProjectID identifies one Scratch project. IDs are opaque positive
// integers assigned by the remote service; the downloader never
// interprets them beyond ordering and formatting.
type ProjectID int64

// String renders the ID in decimal, the form used in ledger files,
// archive names and URLs.
func (id ProjectID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// FetchTask is one unit of work handed to a worker.
//
// A task is created when an ID is pulled from a source and consumed by
// exactly one worker invocation. Retries happen inside that invocation;
// the orchestrator never re-pulls an ID to retry it.
type FetchTask struct {
	// ID is the project to fetch.
	ID ProjectID

	// Timeout bounds each individual network attempt.
	Timeout time.Duration

	// MaxRetries is the total attempt budget for the task (1 = no retry).
	MaxRetries int
}

// FetchOutcome is the terminal result of one task. Archive success and
// metadata success are independent axes: OK without Row means the
// archive was written but metadata resolution failed, which still
// counts as a successful download.
type FetchOutcome struct {
	// ID is the project the outcome belongs to.
	ID ProjectID

	// OK reports whether the archive was written.
	OK bool

	// Row carries the dataset row when metadata resolved. Nil is legal
	// for successful outcomes; a non-nil Row implies OK.
	Row *MetadataRow

	// Err describes the terminal failure, empty on success.
	Err string
}

// ProjectInfo is the resolved view of a project from the metadata
// service: the access token used for the credentialed content URL plus
// the descriptive fields that feed the dataset.
type ProjectInfo struct {
	ID         ProjectID
	Token      string
	Title      string
	Author     string
	CreatedAt  time.Time
	ModifiedAt time.Time

	// RemixParentID and RemixRootID are nil for projects that are not
	// remixes.
	RemixParentID *ProjectID
	RemixRootID   *ProjectID
}

// Row converts the resolved metadata into a dataset row.
func (p *ProjectInfo) Row() *MetadataRow {
	return NewMetadataRow(p.Title, p.ID, p.Author, p.CreatedAt, p.ModifiedAt, p.RemixParentID, p.RemixRootID)
}

// DatasetHeader is the column header of dataset.csv, in the order
// MetadataRow.Fields emits cells.
var DatasetHeader = []string{
	"Title",
	"Project ID",
	"Author",
	"Creation date",
	"Modified date",
	"Remix parent id",
	"Remix root id",
}

// MetadataRow is one dataset.csv row. Rows exist only for tasks whose
// metadata resolved; the set of rows is always a subset of the success
// ledger.
type MetadataRow struct {
	Title         string
	ID            ProjectID
	Author        string
	CreatedAt     time.Time
	ModifiedAt    time.Time
	RemixParentID *ProjectID
	RemixRootID   *ProjectID
}

// NewMetadataRow builds a row, replacing commas in the free-text fields
// with spaces so titles never disturb the column layout.
func NewMetadataRow(title string, id ProjectID, author string, created, modified time.Time, remixParent, remixRoot *ProjectID) *MetadataRow {
	return &MetadataRow{
		Title:         cleanField(title),
		ID:            id,
		Author:        cleanField(author),
		CreatedAt:     created,
		ModifiedAt:    modified,
		RemixParentID: remixParent,
		RemixRootID:   remixRoot,
	}
}

// Fields returns the CSV cells in DatasetHeader order. Zero timestamps
// and nil remix references render as empty cells.
func (r *MetadataRow) Fields() []string {
	return []string{
		r.Title,
		r.ID.String(),
		r.Author,
		formatTime(r.CreatedAt),
		formatTime(r.ModifiedAt),
		formatOptionalID(r.RemixParentID),
		formatOptionalID(r.RemixRootID),
	}
}

// cleanField strips commas out of free-text metadata.
func cleanField(s string) string {
	return strings.ReplaceAll(s, ",", " ")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatOptionalID(id *ProjectID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

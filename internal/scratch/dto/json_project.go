package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/scratchkit/scratch-downloader/internal/model"
)

// ScratchTime is a custom time type that handles the API's timestamp formats.
type ScratchTime struct {
	time.Time
}

// UnmarshalJSON parses timestamps like "2013-05-08T21:04:36.000Z".
func (st *ScratchTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		st.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	if s == "" {
		st.Time = time.Time{}
		return nil
	}

	// Try multiple formats
	formats := []string{
		time.RFC3339,              // accepts fractional seconds too
		"2006-01-02T15:04:05.000", // no zone suffix
		"2006-01-02 15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			st.Time = t
			return nil
		}
	}

	return fmt.Errorf("unable to parse date: %s", s)
}

// JSONProject represents the deserialized project document from the
// Scratch API. Explore pages reuse the same shape, so only the fields
// the downloader consumes are declared.
type JSONProject struct {
	ID           int64        `json:"id"`
	Title        string       `json:"title"`
	ProjectToken string       `json:"project_token"`
	Author       *JSONAuthor  `json:"author"`
	History      *JSONHistory `json:"history"`
	Remix        *JSONRemix   `json:"remix"`
}

// JSONAuthor contains the project owner's account fields.
type JSONAuthor struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// JSONHistory contains the project's lifecycle timestamps.
type JSONHistory struct {
	Created  *ScratchTime `json:"created"`
	Modified *ScratchTime `json:"modified"`
	Shared   *ScratchTime `json:"shared"`
}

// JSONRemix contains the remix lineage; both fields are null for
// original projects.
type JSONRemix struct {
	Parent *int64 `json:"parent"`
	Root   *int64 `json:"root"`
}

// ToProjectInfo converts a JSONProject to a model.ProjectInfo.
func (jp *JSONProject) ToProjectInfo() *model.ProjectInfo {
	info := &model.ProjectInfo{
		ID:    model.ProjectID(jp.ID),
		Token: jp.ProjectToken,
		Title: jp.Title,
	}

	if jp.Author != nil {
		info.Author = jp.Author.Username
	}
	if jp.History != nil {
		if jp.History.Created != nil {
			info.CreatedAt = jp.History.Created.Time
		}
		if jp.History.Modified != nil {
			info.ModifiedAt = jp.History.Modified.Time
		}
	}
	if jp.Remix != nil {
		info.RemixParentID = toProjectID(jp.Remix.Parent)
		info.RemixRootID = toProjectID(jp.Remix.Root)
	}

	return info
}

func toProjectID(v *int64) *model.ProjectID {
	if v == nil {
		return nil
	}
	id := model.ProjectID(*v)
	return &id
}

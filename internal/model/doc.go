// Package model defines the core data structures used throughout
// the scratch-downloader application.
//
// # Tasks and Outcomes
//
// FetchTask and FetchOutcome are the values that cross the boundary
// between the orchestrator and its workers. Both are plain values with
// no shared state, so a worker can run in any goroutine:
//
//	task := model.FetchTask{ID: 104, Timeout: time.Second, MaxRetries: 3}
//	outcome := runner.Run(ctx, task)
//	if outcome.OK {
//	    fmt.Println(outcome.ID, "archived")
//	}
//
// # Dataset Rows
//
// MetadataRow is one line of dataset.csv. Rows are built from resolved
// project metadata and only exist when resolution succeeded; a download
// can succeed without producing a row:
//
//	row := model.NewMetadataRow(title, id, author, created, modified, parent, root)
//	w.Write(row.Fields()) // cells in model.DatasetHeader order
//
// # Project Metadata
//
// ProjectInfo is the resolved view of a project: the access token for
// the credentialed content endpoint plus the descriptive fields. Its
// Row method converts it into a MetadataRow.
package model

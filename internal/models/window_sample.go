package models

// WindowSample holds the reservoir of raw records retained for one window.
// Seen is the number of records the reservoir was offered.
type WindowSample struct {
	Key     BucketKey       `json:"key"`
	Seen    int64           `json:"seen"`
	Records []RequestRecord `json:"records"`
}

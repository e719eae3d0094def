package domain

import "sort"

// TimestampLayout is the sortable timestamp format stamped onto content
// records at submission time. Lexicographic order equals chronological order.
const TimestampLayout = "2006-01-02 15:04"

// ForumPost is a community forum message.
type ForumPost struct {
	ID             string `json:"id"`
	UID            string `json:"uid"`
	UserName       string `json:"userName"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp"`
	Trusted        bool   `json:"trusted"`
	UserProfileURL string `json:"userProfileUrl"`
}

// IncidentReport is a user-submitted landslide incident with an optional
// photo reference.
type IncidentReport struct {
	ID          string  `json:"id"`
	UID         string  `json:"uid"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ImageURL    string  `json:"imageUrl"`
	Timestamp   string  `json:"timestamp"`
	Trusted     bool    `json:"trusted"`
}

// ContentRecord is the common surface of forum posts and incident reports
// needed for ordering and deduplication.
type ContentRecord interface {
	RecordID() string
	CreatedAt() string
}

func (p ForumPost) RecordID() string  { return p.ID }
func (p ForumPost) CreatedAt() string { return p.Timestamp }

func (r IncidentReport) RecordID() string  { return r.ID }
func (r IncidentReport) CreatedAt() string { return r.Timestamp }

// SortRecords orders records for display: createdAt descending, ties broken
// by id descending so equal timestamps still sort deterministically.
func SortRecords[T ContentRecord](records []T) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.CreatedAt() != b.CreatedAt() {
			return a.CreatedAt() > b.CreatedAt()
		}
		return a.RecordID() > b.RecordID()
	})
}

// DecodeForumPost converts one raw child value into a ForumPost. A raw value
// that is not an object reports ok=false and the child is skipped; malformed
// individual fields fall back to their zero sentinels without rejecting the
// record.
func DecodeForumPost(raw any) (ForumPost, bool) {
	fields, isMap := raw.(map[string]any)
	if !isMap {
		return ForumPost{}, false
	}
	return ForumPost{
		ID:             decodeString(fields["id"]),
		UID:            decodeString(fields["uid"]),
		UserName:       decodeString(fields["userName"]),
		Content:        decodeString(fields["content"]),
		Timestamp:      decodeString(fields["timestamp"]),
		Trusted:        decodeBool(fields["trusted"]),
		UserProfileURL: decodeString(fields["userProfileUrl"]),
	}, true
}

// DecodeIncidentReport converts one raw child value into an IncidentReport.
// Same totality rules as DecodeForumPost.
func DecodeIncidentReport(raw any) (IncidentReport, bool) {
	fields, isMap := raw.(map[string]any)
	if !isMap {
		return IncidentReport{}, false
	}
	rec := IncidentReport{
		ID:          decodeString(fields["id"]),
		UID:         decodeString(fields["uid"]),
		Description: decodeString(fields["description"]),
		ImageURL:    decodeString(fields["imageUrl"]),
		Timestamp:   decodeString(fields["timestamp"]),
		Trusted:     decodeBool(fields["trusted"]),
	}
	if lat := decodeNumber(fields["latitude"]); lat != nil {
		rec.Latitude = *lat
	}
	if lon := decodeNumber(fields["longitude"]); lon != nil {
		rec.Longitude = *lon
	}
	return rec, true
}

func decodeString(v any) string {
	s, _ := v.(string)
	return s
}

func decodeBool(v any) bool {
	b, _ := v.(bool)
	return b
}

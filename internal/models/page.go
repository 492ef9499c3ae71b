package models

import "time"

// Link is a discovered outbound link with its visible anchor text.
type Link struct {
	URL        string `json:"url"`
	AnchorText string `json:"anchor_text"`
}

// AttachmentRecord captures the outcome of fetching and parsing one
// attachment linked from a page. A failed parse always carries a reason so
// it is never confused with an attachment that genuinely had no content.
type AttachmentRecord struct {
	FileName      string `json:"file_name"`
	OriginalURL   string `json:"original_url"`
	LocalPath     string `json:"local_path,omitempty"`
	MimeType      string `json:"mime_type,omitempty"`
	ExtractedText string `json:"extracted_text,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// Failed reports whether the attachment could not be parsed.
func (a *AttachmentRecord) Failed() bool {
	return a.FailureReason != ""
}

// PageRecord is the result of fetching and normalizing one HTML page.
// Records are ephemeral: the session consumes the links and persists the
// content, then the record is dropped.
type PageRecord struct {
	URL          string             `json:"url"`
	Title        string             `json:"title"`
	BodyText     string             `json:"body_text"`
	Links        []Link             `json:"links"`
	Attachments  []AttachmentRecord `json:"attachments,omitempty"`
	QualityScore float64            `json:"quality_score"`
	FetchedAt    time.Time          `json:"fetched_at"`
}

// StoredRecord is the on-disk form of a crawled page in the pending
// directory, consumed by the validation pipeline.
type StoredRecord struct {
	SourceInfo     CrawlTarget   `json:"source_info"`
	CrawledContent StoredContent `json:"crawled_content"`
	Metadata       StoredMeta    `json:"metadata"`
}

type StoredContent struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	ExtractedText string `json:"extracted_text"`
}

type StoredMeta struct {
	CrawlTimestamp  time.Time `json:"crawl_timestamp"`
	ProcessingOrder int       `json:"processing_order"`
	QualityScore    float64   `json:"quality_score"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// packetExpiry is how long a packaged record stays valid downstream.
const packetExpiry = 30 * 24 * time.Hour

// maxPacketText is the truncation limit for extracted text carried in a packet.
const maxPacketText = 500

// Packet is the final packaged record handed to downstream delivery.
type Packet struct {
	PacketID       string         `json:"packet_id"`
	AgentID        string         `json:"agent_id"`
	SourceInfo     PacketSource   `json:"source_info"`
	CrawledContent PacketContent  `json:"crawled_content"`
	Metadata       PacketMetadata `json:"metadata"`
}

type PacketSource struct {
	SiteIdentifier    string `json:"site_identifier"`
	SiteName          string `json:"site_name"`
	BaseURL           string `json:"base_url"`
	InstructionPrompt string `json:"instruction_prompt"`
}

type PacketContent struct {
	ContentURL     string   `json:"content_url"`
	ContentType    string   `json:"content_type"`
	Title          string   `json:"title"`
	ExtractedText  string   `json:"extracted_text"`
	RelevanceScore float64  `json:"relevance_score"`
	Language       string   `json:"language"`
	Summary        string   `json:"summary"`
	Keywords       []string `json:"keywords"`
}

type PacketMetadata struct {
	CrawlTimestamp time.Time `json:"crawl_timestamp"`
	DataExpiryDate time.Time `json:"data_expiry_date"`
	SourcePageURL  string    `json:"source_page_url"`
}

// Enrichment is the structured result of the deep-analysis call.
// A failed call still yields a usable value with a zero score and Failed
// set, so the pipeline always has a score to record.
type Enrichment struct {
	Summary        string   `json:"summary"`
	Keywords       []string `json:"keywords"`
	RelevanceScore float64  `json:"relevance_score"`
	Language       string   `json:"language"`
	Failed         bool     `json:"-"`
}

// NewPacket assembles a Packet from an accepted record and its enrichment.
func NewPacket(agentID string, record *StoredRecord, enrichment *Enrichment) *Packet {
	now := time.Now().UTC()
	text := record.CrawledContent.ExtractedText
	if runes := []rune(text); len(runes) > maxPacketText {
		text = string(runes[:maxPacketText]) + "..."
	}
	return &Packet{
		PacketID: uuid.New().String(),
		AgentID:  agentID,
		SourceInfo: PacketSource{
			SiteIdentifier:    record.SourceInfo.SiteIdentifier,
			SiteName:          record.SourceInfo.SiteName,
			BaseURL:           record.SourceInfo.BaseURL,
			InstructionPrompt: record.SourceInfo.InstructionPrompt,
		},
		CrawledContent: PacketContent{
			ContentURL:     record.CrawledContent.URL,
			ContentType:    "webpage_text",
			Title:          record.CrawledContent.Title,
			ExtractedText:  text,
			RelevanceScore: enrichment.RelevanceScore,
			Language:       enrichment.Language,
			Summary:        enrichment.Summary,
			Keywords:       enrichment.Keywords,
		},
		Metadata: PacketMetadata{
			CrawlTimestamp: now,
			DataExpiryDate: now.Add(packetExpiry),
			SourcePageURL:  record.CrawledContent.URL,
		},
	}
}

package pipeline

import (
	"bytes"
	"encoding/json"
	"time"

	"docingest/pkg/models"
)

// DocumentInfo is the metadata block of the persisted output record.
type DocumentInfo struct {
	Filename       string                `json:"filename"`
	ProcessingTime string                `json:"processing_time"`
	ProcessorID    string                `json:"processor_id"`
	TotalPages     int                   `json:"total_pages"`
	Dimensions     *models.PageDimension `json:"dimensions,omitempty"`
}

// EntityValue is one extracted value within an entity group.
type EntityValue struct {
	Value           string  `json:"value"`
	Confidence      float32 `json:"confidence"`
	NormalizedValue *string `json:"normalizedValue"`
}

// EntityGroups maps entity types to their extracted values. Types keep
// the order they were first seen in the extraction result and values keep
// append order, so encoding/json's sorted map keys cannot be used.
type EntityGroups struct {
	order  []string
	groups map[string][]EntityValue
}

// NewEntityGroups returns an empty group collection.
func NewEntityGroups() *EntityGroups {
	return &EntityGroups{groups: make(map[string][]EntityValue)}
}

// Add appends a value to its type's group, registering the type on first sight.
func (g *EntityGroups) Add(entityType string, value EntityValue) {
	if _, ok := g.groups[entityType]; !ok {
		g.order = append(g.order, entityType)
	}
	g.groups[entityType] = append(g.groups[entityType], value)
}

// Get returns the values recorded for an entity type.
func (g *EntityGroups) Get(entityType string) []EntityValue {
	return g.groups[entityType]
}

// Types returns the entity types in first-seen order.
func (g *EntityGroups) Types() []string {
	return g.order
}

// MarshalJSON encodes the groups as a JSON object with keys in
// first-seen order.
func (g *EntityGroups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entityType := range g.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entityType)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		values, err := json.Marshal(g.groups[entityType])
		if err != nil {
			return nil, err
		}
		buf.Write(values)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// OutputRecord is the durable artifact of one successful run. Its
// existence at the deterministic output key is the authoritative
// dedup signal.
type OutputRecord struct {
	DocumentInfo DocumentInfo  `json:"document_info"`
	Entities     *EntityGroups `json:"entities"`
	RawText      string        `json:"raw_text"`
}

// BuildOutputRecord assembles the persisted record from an extraction
// result. Repeated entity types group into ordered lists.
func BuildOutputRecord(filename string, result *models.ExtractionResult, processedAt time.Time) *OutputRecord {
	info := DocumentInfo{
		Filename:       filename,
		ProcessingTime: processedAt.UTC().Format(time.RFC3339),
		ProcessorID:    result.ProcessorID,
		TotalPages:     len(result.Pages),
	}
	if len(result.Pages) > 0 {
		dim := result.Pages[0]
		info.Dimensions = &dim
	}

	entities := NewEntityGroups()
	for _, entity := range result.Entities {
		entities.Add(entity.Type, EntityValue{
			Value:           entity.MentionText,
			Confidence:      entity.Confidence,
			NormalizedValue: entity.NormalizedValue,
		})
	}

	return &OutputRecord{
		DocumentInfo: info,
		Entities:     entities,
		RawText:      result.Text,
	}
}

// Encode renders the record as pretty-printed UTF-8 JSON.
func (r *OutputRecord) Encode() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

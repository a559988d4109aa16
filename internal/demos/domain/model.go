package domain

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"
)

var ErrNotFound = errors.New("chat not found")

// Metadata records what the classifier detected for a demo.
type Metadata struct {
	DemoType    string   `json:"demo_type"`
	Features    []string `json:"features"`
	Style       string   `json:"style"`
	UserRequest string   `json:"user_request"`
}

// Demo is a generated standalone HTML page attached to a chat. Immutable once stored.
type Demo struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	ChatID      string    `json:"chat_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	HTMLContent string    `json:"html_content"`
	IsInlineCSS bool      `json:"is_inline_css"`
	Metadata    Metadata  `json:"metadata"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateInput struct {
	ProjectID   string
	ChatID      string
	Name        string
	Description string
	HTMLContent string
	Metadata    Metadata
}

// Classification is the classifier's verdict. Field names follow the JSON the
// model is asked to produce.
type Classification struct {
	IsWebDemoRequest bool     `json:"isWebDemoRequest"`
	DemoType         string   `json:"demoType"`
	Features         []string `json:"features"`
	Style            string   `json:"style"`
	ShouldCreate     bool     `json:"shouldCreate"`
}

var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

// ParseClassification reads model output as JSON, then retries on the outermost
// {...} span. Output that still does not parse means no demo.
func ParseClassification(out string) Classification {
	var c Classification
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &c); err == nil {
		return c
	}
	if m := jsonObject.FindString(out); m != "" {
		c = Classification{}
		if err := json.Unmarshal([]byte(m), &c); err == nil {
			return c
		}
	}
	return Classification{ShouldCreate: false}
}

// Name renders the demo title, e.g. "Demo: landing page".
func (c Classification) Name() string {
	return "Demo: " + strings.ReplaceAll(c.demoType(), "_", " ")
}

func (c Classification) Metadata(userMessage string) Metadata {
	features := c.Features
	if features == nil {
		features = []string{}
	}
	return Metadata{
		DemoType:    c.demoType(),
		Features:    features,
		Style:       c.style(),
		UserRequest: userMessage,
	}
}

func (c Classification) demoType() string {
	if strings.TrimSpace(c.DemoType) == "" {
		return "other"
	}
	return c.DemoType
}

func (c Classification) style() string {
	if strings.TrimSpace(c.Style) == "" {
		return "other"
	}
	return c.Style
}

// Description renders the demo description for the triggering message.
func Description(userMessage string) string {
	return "Generated from: " + userMessage
}

// Package prompt assembles model instructions around fixed JSON shape contracts.
package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed schemas/*.json
var embedded embed.FS

const (
	outfitSchemaFile       = "outfit.json"
	presentationSchemaFile = "presentation.json"
)

// Builder holds the compacted schema documents loaded at startup.
type Builder struct {
	outfitSchema       string
	presentationSchema string
}

// Load reads the schemas from dir, or the embedded defaults when dir is empty.
// A configured directory must contain both schema files.
func Load(dir string) (*Builder, error) {
	read := func(name string) ([]byte, error) {
		if dir == "" {
			return embedded.ReadFile("schemas/" + name)
		}
		return os.ReadFile(filepath.Join(dir, name))
	}

	outfit, err := loadSchema(read, outfitSchemaFile)
	if err != nil {
		return nil, err
	}
	presentation, err := loadSchema(read, presentationSchemaFile)
	if err != nil {
		return nil, err
	}
	return &Builder{outfitSchema: outfit, presentationSchema: presentation}, nil
}

// MustDefault returns a Builder over the embedded schemas.
func MustDefault() *Builder {
	b, err := Load("")
	if err != nil {
		panic(err)
	}
	return b
}

func loadSchema(read func(string) ([]byte, error), name string) (string, error) {
	raw, err := read(name)
	if err != nil {
		return "", fmt.Errorf("read schema %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", fmt.Errorf("schema %s is not valid JSON: %w", name, err)
	}
	if buf.Len() == 0 || buf.Bytes()[0] != '{' {
		return "", errors.New("schema " + name + " must be a JSON object")
	}
	return buf.String(), nil
}

// Insight builds the outfit analysis instruction. preferences may be empty.
func (b *Builder) Insight(preferences string) string {
	var sb strings.Builder
	sb.WriteString("Analyze the outfit depicted in the image provided below. ")
	sb.WriteString("Provide detailed and actionable fashion insights including an outfit analysis, ")
	sb.WriteString("style recommendations, and clear benefits of the suggestions.\n")
	sb.WriteString("Return everything in one JSON with schema: ")
	sb.WriteString(b.outfitSchema)
	if p := strings.TrimSpace(preferences); p != "" {
		sb.WriteString(" User style preferences: ")
		sb.WriteString(p)
		sb.WriteString(".")
	}
	return sb.String()
}

// Presentation builds the slide deck instruction. research, when non-empty,
// is folded in as background notes.
func (b *Builder) Presentation(topic string, slides int, research string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a professional presentation about: %s.\n", strings.TrimSpace(topic))
	fmt.Fprintf(&sb, "The presentation must contain exactly %d slides. ", slides)
	sb.WriteString("Use a varied mix of layouts, keep text concise, and include graphic elements ")
	sb.WriteString("where a picture helps; describe each picture in a short English phrase.\n")
	if r := strings.TrimSpace(research); r != "" {
		sb.WriteString("Base the content on these research notes:\n")
		sb.WriteString(r)
		sb.WriteString("\n")
	}
	sb.WriteString("Return everything in one JSON with schema: ")
	sb.WriteString(b.presentationSchema)
	return sb.String()
}

// Research asks a search-grounded model for current facts about topic.
func Research(topic string) string {
	return fmt.Sprintf("Research the topic %q using web search. "+
		"Return a concise bullet list of up-to-date facts, figures and notable sources "+
		"that would help build an informative presentation. Plain text only.", strings.TrimSpace(topic))
}

// Translate asks for an English rendering of text.
func Translate(text string) string {
	return "Translate sentences in brackets [] into English:\n[" + text + "]\n"
}

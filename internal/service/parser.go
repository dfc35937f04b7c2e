package service

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"golang.org/x/net/html"
)

// Parser handles HTML fragments returned by the on-this-day API
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// TextFromHTML returns the readable text of an HTML fragment with
// whitespace collapsed. Script and style content is dropped.
func (p *Parser) TextFromHTML(fragment string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))

	var textBuilder strings.Builder
	skipDepth := 0

	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			break // io.EOF or malformed input, keep what we have
		}

		switch tokenType {
		case html.StartTagToken:
			if isSkippedElement(tokenizer) {
				skipDepth++
			}
		case html.EndTagToken:
			if skipDepth > 0 && isSkippedElement(tokenizer) {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			textBuilder.Write(tokenizer.Text())
		}
	}

	return strings.Join(strings.Fields(textBuilder.String()), " ")
}

// isSkippedElement returns true for elements whose content is not prose
func isSkippedElement(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	default:
		return false
	}
}

// Checksum computes the MD5 hash of text
func (p *Parser) Checksum(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

package scan

import (
	"bytes"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Block is a script embedded in a single-file component.
type Block struct {
	Source []byte
	Lang   Language
}

// ExtractBlocks returns the scripts of a .vue, .svelte or .astro file. Astro
// frontmatter comes first when present. Other extensions yield nothing.
func ExtractBlocks(path string, content []byte) []Block {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vue", ".svelte":
		return scriptBlocks(content, LangJavaScript)
	case ".astro":
		var blocks []Block
		front, rest := splitFrontmatter(content)
		if front != nil {
			blocks = append(blocks, Block{Source: front, Lang: LangTypeScript})
		}
		// Astro processes script tags as TypeScript
		return append(blocks, scriptBlocks(rest, LangTypeScript)...)
	default:
		return nil
	}
}

// scriptBlocks tokenizes content and collects the text of each <script>
// element. The lang attribute picks the grammar, otherwise fallback applies.
func scriptBlocks(content []byte, fallback Language) []Block {
	var blocks []Block

	z := html.NewTokenizer(bytes.NewReader(content))
	inScript := false
	lang := fallback
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a truncated document, keep what we have
			return blocks
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "script" {
				continue
			}
			inScript = true
			lang = fallback
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "lang" {
					lang = languageFromAttr(string(val), fallback)
				}
			}
		case html.TextToken:
			if inScript {
				text := bytes.Clone(z.Text())
				if len(bytes.TrimSpace(text)) > 0 {
					blocks = append(blocks, Block{Source: text, Lang: lang})
				}
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "script" {
				inScript = false
			}
		}
	}
}

func languageFromAttr(val string, fallback Language) Language {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "ts", "typescript":
		return LangTypeScript
	case "tsx":
		return LangTSX
	case "js", "javascript", "jsx":
		return LangJavaScript
	default:
		return fallback
	}
}

// splitFrontmatter separates a leading "---" fenced block from the rest of
// an Astro file. front is nil when the file has no frontmatter.
func splitFrontmatter(content []byte) (front, rest []byte) {
	trimmed := bytes.TrimLeft(content, " \t\r\n")
	if !bytes.HasPrefix(trimmed, []byte("---")) {
		return nil, content
	}

	body := trimmed[3:]
	nl := bytes.IndexByte(body, '\n')
	if nl < 0 {
		return nil, content
	}
	body = body[nl+1:]

	for offset := 0; offset <= len(body); {
		end := bytes.IndexByte(body[offset:], '\n')
		line := body[offset:]
		if end >= 0 {
			line = body[offset : offset+end]
		}
		if strings.TrimSpace(string(line)) == "---" {
			next := len(body)
			if end >= 0 {
				next = offset + end + 1
			}
			return body[:offset], body[next:]
		}
		if end < 0 {
			break
		}
		offset += end + 1
	}

	// Unterminated fence
	return nil, content
}

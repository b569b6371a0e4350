package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/panbanda/elide/pkg/ast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ErrUnsupportedLanguage is returned when parsing a file whose language has
// no grammar.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language represents a supported source language.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangJavaScript Language = "javascript"
	LangUnknown    Language = "unknown"
)

// Parser wraps tree-sitter and converts its concrete syntax tree into an
// ast.Tree. A Parser is not safe for concurrent use; create one per worker.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the converted tree and metadata.
type ParseResult struct {
	Tree      *ast.Tree
	Language  Language
	Source    []byte
	Path      string
	HasErrors bool
}

// New creates a new parser instance.
func New() *Parser {
	return &Parser{
		parser: sitter.NewParser(),
	}
}

// ParseFile reads and parses a source file.
func (p *Parser) ParseFile(ctx context.Context, path string) (*ParseResult, error) {
	lang := DetectLanguage(path)
	if lang == LangUnknown {
		return nil, fmt.Errorf("%w for file: %s", ErrUnsupportedLanguage, path)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return p.Parse(ctx, source, lang, path)
}

// Parse parses source code with a specified language.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language, path string) (*ParseResult, error) {
	tsLang, err := GetTreeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	cst, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}
	defer cst.Close()

	root := cst.RootNode()
	return &ParseResult{
		Tree:      Convert(root, source, path),
		Language:  lang,
		Source:    source,
		Path:      path,
		HasErrors: root.HasError(),
	}, nil
}

// GetTreeSitterLanguage returns the tree-sitter grammar for a Language.
func GetTreeSitterLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
}

// DetectLanguage determines the language from a file path. Declaration
// files (.d.ts) carry no runtime imports and are reported as unknown.
func DetectLanguage(path string) Language {
	base := strings.ToLower(filepath.Base(path))
	if strings.HasSuffix(base, ".d.ts") || strings.HasSuffix(base, ".d.mts") || strings.HasSuffix(base, ".d.cts") {
		return LangUnknown
	}

	switch filepath.Ext(base) {
	case ".ts", ".mts", ".cts":
		return LangTypeScript
	case ".tsx":
		return LangTSX
	case ".jsx":
		return LangTSX // Use TSX parser for JSX
	case ".js", ".mjs", ".cjs":
		return LangJavaScript
	default:
		return LangUnknown
	}
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

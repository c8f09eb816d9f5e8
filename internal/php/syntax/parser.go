package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"
)

// Provider supplies parsed trees to the lint engine. The engine treats
// the provider as an opaque collaborator; anything that can produce a
// Tree with byte-accurate ranges can stand in (tests use the default
// provider over inline fixtures).
type Provider interface {
	Parse(ctx context.Context, path string, src []byte) (*Tree, error)
}

// Parser is the default Provider, backed by the tree-sitter PHP grammar.
//
// Each Parse call uses a fresh tree-sitter parser because the underlying
// parser object is not safe for concurrent use; a Parser value therefore
// is, and one instance can be shared across worker goroutines.
type Parser struct{}

// NewParser returns the default PHP tree provider.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses src as PHP and returns the resulting tree.
func (p *Parser) Parse(ctx context.Context, path string, src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(php.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return newTree(path, src, tree), nil
}

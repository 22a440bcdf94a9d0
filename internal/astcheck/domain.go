package astcheck

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Domain is a coarse application area the generator's context_adaptation
// strategy specializes a pattern toward.
type Domain string

const (
	DomainDatabase Domain = "database"
	DomainAPI      Domain = "api"
	DomainFrontend Domain = "frontend"
	DomainUnknown  Domain = "unknown"
)

var domainIdentifierHints = map[Domain][]string{
	DomainDatabase: {"sql", "query", "db", "conn", "tx", "select", "insert", "cursor", "schema"},
	DomainAPI:      {"http", "request", "response", "handler", "router", "endpoint", "client", "rpc"},
	DomainFrontend: {"component", "render", "props", "state", "dom", "element", "style", "view"},
}

// DetectDomain classifies source into a Domain. When path's extension is
// recognized it parses source with tree-sitter and scores domain hints
// against identifier node text, which is more precise than scanning raw
// text because it ignores string/comment bodies. Unrecognized extensions
// fall back to a plain substring scan over source (spec.md §4.6
// "context_adaptation ... detected via keyword analysis").
func DetectDomain(path string, source []byte) Domain {
	lang, langName, ok := Detect(path)
	if !ok {
		return detectDomainByKeywords(string(source))
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil || tree == nil {
		return detectDomainByKeywords(string(source))
	}
	defer tree.Close()

	scores := map[Domain]int{}
	walkIdentifiers(tree.RootNode(), source, func(text string) {
		lower := strings.ToLower(text)
		for domain, hints := range domainIdentifierHints {
			for _, hint := range hints {
				if strings.Contains(lower, hint) {
					scores[domain]++
				}
			}
		}
	})
	_ = langName

	return bestDomain(scores)
}

// walkIdentifiers visits every leaf node of tree and calls visit with its
// source text, bounded to a reasonable node count so a pathologically
// large file cannot blow the generator's soft budget.
func walkIdentifiers(n *sitter.Node, source []byte, visit func(string)) {
	const maxNodes = 4000
	visited := 0
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil || visited >= maxNodes {
			return
		}
		visited++
		if n.ChildCount() == 0 {
			visit(n.Content(source))
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(n)
}

func detectDomainByKeywords(text string) Domain {
	lower := strings.ToLower(text)
	scores := map[Domain]int{}
	for domain, hints := range domainIdentifierHints {
		for _, hint := range hints {
			scores[domain] += strings.Count(lower, hint)
		}
	}
	return bestDomain(scores)
}

func bestDomain(scores map[Domain]int) Domain {
	best := DomainUnknown
	bestScore := 0
	for _, d := range []Domain{DomainDatabase, DomainAPI, DomainFrontend} {
		if scores[d] > bestScore {
			best, bestScore = d, scores[d]
		}
	}
	return best
}

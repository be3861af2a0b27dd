package client

import (
	"context"
	"fmt"

	"github.com/orneryd/redisgraphio/pkg/extract"
	"github.com/orneryd/redisgraphio/pkg/query"
	"github.com/orneryd/redisgraphio/pkg/reply"
	"github.com/orneryd/redisgraphio/pkg/schema"
)

// Labels returns every node label of the graph; the index of a name is its
// compact id.
func (g *Graph) Labels() ([]string, error) {
	return g.LabelsContext(context.Background())
}

// PropertyKeys returns every property key of the graph in id order.
func (g *Graph) PropertyKeys() ([]string, error) {
	return g.PropertyKeysContext(context.Background())
}

// RelationshipTypes returns every relationship type of the graph in id order.
func (g *Graph) RelationshipTypes() ([]string, error) {
	return g.RelationshipTypesContext(context.Background())
}

// LabelsContext is Labels with a context.
func (g *Graph) LabelsContext(ctx context.Context) ([]string, error) {
	return g.names(ctx, reply.LabelID)
}

// PropertyKeysContext is PropertyKeys with a context.
func (g *Graph) PropertyKeysContext(ctx context.Context) ([]string, error) {
	return g.names(ctx, reply.PropertyKeyID)
}

// RelationshipTypesContext is RelationshipTypes with a context.
func (g *Graph) RelationshipTypesContext(ctx context.Context) ([]string, error) {
	return g.names(ctx, reply.RelationshipTypeID)
}

// names calls the listing procedure of kind. It is the schema.Fetcher used to
// refresh the catalog, so it decodes without a resolver.
func (g *Graph) names(ctx context.Context, kind reply.IDKind) ([]string, error) {
	proc := schema.Procedure(kind)
	if proc == "" {
		return nil, fmt.Errorf("no listing procedure for id kind %d", kind)
	}
	res, err := g.run(ctx, query.New("CALL "+proc+"()").ReadOnly(true), nil)
	if err != nil {
		return nil, err
	}
	names, err := extract.Rows(res, extract.Row1(extract.String))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", proc, err)
	}
	return names, nil
}

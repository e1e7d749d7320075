package backend

import (
	"context"
	"fmt"
	"strings"
)

type SuggestRequest struct {
	Text  string `json:"userInput"`
	Limit int32  `json:"limit"`
}

type SearchClient struct {
	search         *unary[SearchParams, SearchResult]
	suggest        *unary[SuggestRequest, []string]
	getSearchTypes *unary[Empty, []SearchType]
}

func NewSearchClient(t Transport) *SearchClient {
	return &SearchClient{
		search:         newUnary[SearchParams, SearchResult](t, "search"),
		suggest:        newUnary[SuggestRequest, []string](t, "suggest"),
		getSearchTypes: newUnary[Empty, []SearchType](t, "getSearchTypes"),
	}
}

func (c *SearchClient) Search(ctx context.Context, params SearchParams) (SearchResult, error) {
	params.Text = strings.TrimSpace(params.Text)
	if params.Text == "" {
		return SearchResult{}, fmt.Errorf("search text is required")
	}
	out, err := c.search.call(ctx, &params)
	if err != nil {
		return SearchResult{}, err
	}
	return *out, nil
}

func (c *SearchClient) SuggestSearch(ctx context.Context, text string, limit int32) ([]string, error) {
	out, err := c.suggest.call(ctx, &SuggestRequest{Text: strings.TrimSpace(text), Limit: limit})
	if err != nil {
		return nil, err
	}
	return *out, nil
}

func (c *SearchClient) GetSearchTypes(ctx context.Context) ([]SearchType, error) {
	out, err := c.getSearchTypes.call(ctx, &Empty{})
	if err != nil {
		return nil, err
	}
	return *out, nil
}

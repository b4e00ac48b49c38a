package bvbrc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// FirstCursor is the Solr cursor mark for the first page of a query.
const FirstCursor = "*"

// defaultRows bounds a single page of results.
const defaultRows = 1000

// QueryOptions narrows a collection query.
type QueryOptions struct {
	// Fields to return; empty means all fields.
	Fields []string
	// Sort expression, e.g. "genome_name asc". Cursor pagination
	// requires a stable sort; an "id asc" tiebreaker is appended
	// when the caller's sort does not already include it.
	Sort string
	// Rows per page; defaults to 1000.
	Rows int
	// Cursor is the cursor mark from a previous page, or FirstCursor.
	Cursor string
}

// QueryResult is one page of documents from a collection.
type QueryResult struct {
	Count      int              `json:"count"`
	Total      int              `json:"total"`
	Docs       []map[string]any `json:"results"`
	NextCursor string           `json:"nextCursorId,omitempty"`
}

// DataClient queries the Solr-backed BV-BRC data API.
type DataClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewDataClient creates a data API client. Queries can run long, so the
// timeout here is typically much larger than for the RPC services.
func NewDataClient(baseURL string, timeout time.Duration) *DataClient {
	return &DataClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type solrResponse struct {
	Response struct {
		NumFound int              `json:"numFound"`
		Docs     []map[string]any `json:"docs"`
	} `json:"response"`
	NextCursorMark string `json:"nextCursorMark"`
}

// Query runs a Solr query against one collection and returns a single
// page plus the cursor for the next one. An empty filter matches all
// documents. When the returned cursor equals the one passed in, the
// result set is exhausted.
func (c *DataClient) Query(ctx context.Context, token, collection, filter string, opts QueryOptions) (*QueryResult, error) {
	if collection == "" {
		return nil, fmt.Errorf("%w: collection is required", ErrRequestFailed)
	}
	if filter == "" {
		filter = "*:*"
	}

	rows := opts.Rows
	if rows <= 0 {
		rows = defaultRows
	}
	cursor := opts.Cursor
	if cursor == "" {
		cursor = FirstCursor
	}

	params := url.Values{}
	params.Set("q", filter)
	params.Set("rows", strconv.Itoa(rows))
	params.Set("cursorMark", cursor)
	params.Set("sort", cursorSort(opts.Sort))
	if len(opts.Fields) > 0 {
		params.Set("fl", strings.Join(opts.Fields, ","))
	}

	raw, err := c.get(ctx, token, collection, params)
	if err != nil {
		return nil, err
	}

	var solr solrResponse
	if err := json.Unmarshal(raw, &solr); err != nil {
		return nil, fmt.Errorf("decode data api response: %w", err)
	}

	result := &QueryResult{
		Count: len(solr.Response.Docs),
		Total: solr.Response.NumFound,
		Docs:  solr.Response.Docs,
	}
	if solr.NextCursorMark != "" && solr.NextCursorMark != cursor {
		result.NextCursor = solr.NextCursorMark
	}
	return result, nil
}

// Count returns the total number of documents matching a filter without
// fetching any of them.
func (c *DataClient) Count(ctx context.Context, token, collection, filter string) (int, error) {
	if filter == "" {
		filter = "*:*"
	}

	params := url.Values{}
	params.Set("q", filter)
	params.Set("rows", "0")

	raw, err := c.get(ctx, token, collection, params)
	if err != nil {
		return 0, err
	}

	var solr solrResponse
	if err := json.Unmarshal(raw, &solr); err != nil {
		return 0, fmt.Errorf("decode data api response: %w", err)
	}
	return solr.Response.NumFound, nil
}

func (c *DataClient) get(ctx context.Context, token, collection string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + "/" + url.PathEscape(collection) + "/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create data api request: %w", err)
	}
	req.Header.Set("Accept", "application/solr+json")
	req.Header.Set("Content-Type", "application/solrquery+x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: data api: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read data api response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: data api %s returned status %d: %s",
			ErrRequestFailed, collection, resp.StatusCode, truncate(string(body), 512))
	}
	return body, nil
}

// cursorSort ensures the sort is usable with Solr cursor marks, which
// require a total ordering that includes the unique key.
func cursorSort(sort string) string {
	sort = strings.TrimSpace(sort)
	if sort == "" {
		return "id asc"
	}
	for _, clause := range strings.Split(sort, ",") {
		fields := strings.Fields(clause)
		if len(fields) > 0 && fields[0] == "id" {
			return sort
		}
	}
	return sort + ",id asc"
}

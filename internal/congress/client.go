package congress

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/errors"
)

const (
	DefaultBaseURL       = "https://api.congress.gov/v3"
	DefaultPageLimit     = 250
	DefaultListLimit     = 100
	DefaultSubjectsLimit = 200
	DefaultTimeout       = 30 * time.Second

	// maxResponseBytes caps a single response body.
	maxResponseBytes = 32 << 20

	dateTimeFormat = "2006-01-02T15:04:05Z"
)

// Options configures a Client.
type Options struct {
	BaseURL       string
	APIKey        string
	PageLimit     int
	SubjectsLimit int
	// Timeout applies when HTTPClient is nil. Zero means DefaultTimeout.
	Timeout       time.Duration
	HTTPClient    *http.Client
	Logger        *slog.Logger
}

// Client fetches and validates congress.gov resources.
type Client struct {
	baseURL       string
	apiKey        string
	pageLimit     int
	subjectsLimit int
	http          *http.Client
	validate      *validator.Validate
	log           *slog.Logger
}

// ListOptions selects bills for ListBills.
type ListOptions struct {
	// Congress restricts the listing to one congress; 0 lists across congresses.
	Congress int

	// From and To bound the bills' update timestamp.
	From *time.Time
	To   *time.Time

	// Limit is the page size (default 100, max 250).
	Limit int
}

// NewClient builds a Client. An API key is required.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.NewInvalidRequest("congress.gov API key is not set (CONGRESS_API_KEY)")
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid API base URL %q", opts.BaseURL))
	}

	c := &Client{
		baseURL:       base,
		apiKey:        opts.APIKey,
		pageLimit:     opts.PageLimit,
		subjectsLimit: opts.SubjectsLimit,
		http:          opts.HTTPClient,
		validate:      validator.New(),
		log:           opts.Logger,
	}
	if c.pageLimit <= 0 || c.pageLimit > DefaultPageLimit {
		c.pageLimit = DefaultPageLimit
	}
	if c.subjectsLimit <= 0 {
		c.subjectsLimit = DefaultSubjectsLimit
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c, nil
}

// ListBills lists raw bill identifiers, following every page.
func (c *Client) ListBills(ctx context.Context, opts ListOptions) ([]RawBill, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > DefaultPageLimit {
		limit = DefaultPageLimit
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if opts.From != nil {
		q.Set("fromDateTime", opts.From.UTC().Format(dateTimeFormat))
	}
	if opts.To != nil {
		q.Set("toDateTime", opts.To.UTC().Format(dateTimeFormat))
	}

	path := []string{"bill"}
	if opts.Congress > 0 {
		path = append(path, strconv.Itoa(opts.Congress))
	}
	return Drain(ctx, c.endpoint(q, path...), fetchPage[RawBill](c, "bills"))
}

// BillDetails fetches the bill record itself.
func (c *Client) BillDetails(ctx context.Context, ref bill.Ref) (*BillDetails, error) {
	return fetchSingle[BillDetails](ctx, c, c.billEndpoint(ref, "", nil), "bill")
}

// BillActions fetches the full action history.
func (c *Client) BillActions(ctx context.Context, ref bill.Ref) ([]Action, error) {
	return Drain(ctx, c.billEndpoint(ref, "actions", c.pageQuery()), fetchPage[Action](c, "actions"))
}

// BillSubjects fetches legislative subjects with a single request.
func (c *Client) BillSubjects(ctx context.Context, ref bill.Ref) (*Subjects, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.subjectsLimit))
	return fetchSingle[Subjects](ctx, c, c.billEndpoint(ref, "subjects", q), "subjects")
}

// BillCosponsors fetches every cosponsor.
func (c *Client) BillCosponsors(ctx context.Context, ref bill.Ref) ([]Cosponsor, error) {
	return Drain(ctx, c.billEndpoint(ref, "cosponsors", c.pageQuery()), fetchPage[Cosponsor](c, "cosponsors"))
}

// BillSummaries fetches every summary version, oldest first as the upstream orders them.
func (c *Client) BillSummaries(ctx context.Context, ref bill.Ref) ([]Summary, error) {
	return Drain(ctx, c.billEndpoint(ref, "summaries", c.pageQuery()), fetchPage[Summary](c, "summaries"))
}

// BillCommittees fetches the committees the bill was referred to.
func (c *Client) BillCommittees(ctx context.Context, ref bill.Ref) ([]Committee, error) {
	return Drain(ctx, c.billEndpoint(ref, "committees", c.pageQuery()), fetchPage[Committee](c, "committees"))
}

// CongressMembers fetches the full roster of a congress.
func (c *Client) CongressMembers(ctx context.Context, congress int) ([]Member, error) {
	u := c.endpoint(c.pageQuery(), "member", "congress", strconv.Itoa(congress))
	return Drain(ctx, u, fetchPage[Member](c, "members"))
}

func (c *Client) pageQuery() url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.pageLimit))
	return q
}

func (c *Client) billEndpoint(ref bill.Ref, sub string, q url.Values) string {
	segs := []string{"bill", strconv.Itoa(ref.Congress), ref.Type, ref.Number}
	if sub != "" {
		segs = append(segs, sub)
	}
	return c.endpoint(q, segs...)
}

// endpoint joins path segments onto the base URL. The result carries no credentials.
func (c *Client) endpoint(q url.Values, segs ...string) string {
	escaped := make([]string, len(segs))
	for i, s := range segs {
		escaped[i] = url.PathEscape(s)
	}
	u := c.baseURL + "/" + strings.Join(escaped, "/")
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// get performs one authorized GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid request URL: %v", err))
	}
	q := u.Query()
	q.Set("api_key", c.apiKey)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	clean := redact(rawURL)
	c.log.Debug("congress.gov request", "url", clean)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("congress.gov request")
		}
		var uErr *url.Error
		if stderrors.As(err, &uErr) {
			err = uErr.Err
		}
		return nil, errors.NewUpstreamTransport(clean, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.NewUpstreamTransport(clean, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("congress.gov non-OK response", "url", clean, "status", resp.StatusCode)
		return nil, errors.NewUpstream(resp.StatusCode, clean)
	}
	return body, nil
}

// fetchPage returns a PageFunc that decodes the list under key.
func fetchPage[T any](c *Client, key string) PageFunc[T] {
	return func(ctx context.Context, rawURL string) ([]T, string, error) {
		body, err := c.get(ctx, rawURL)
		if err != nil {
			return nil, "", err
		}

		envelope, err := decodeEnvelope(body, key, rawURL)
		if err != nil {
			return nil, "", err
		}

		var p struct {
			Items      []T `validate:"dive"`
			Pagination Pagination
		}
		if err := json.Unmarshal(envelope[key], &p.Items); err != nil {
			return nil, "", errors.NewSchemaValidation(redact(rawURL), []string{key}, err)
		}
		if raw, ok := envelope["pagination"]; ok {
			if err := json.Unmarshal(raw, &p.Pagination); err != nil {
				return nil, "", errors.NewSchemaValidation(redact(rawURL), []string{"pagination"}, err)
			}
		}
		if err := c.validate.Struct(&p); err != nil {
			return nil, "", validationError(rawURL, err)
		}
		if p.Items == nil {
			p.Items = make([]T, 0)
		}
		return p.Items, p.Pagination.Next, nil
	}
}

// fetchSingle decodes the object under key from one request.
func fetchSingle[T any](ctx context.Context, c *Client, rawURL, key string) (*T, error) {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	envelope, err := decodeEnvelope(body, key, rawURL)
	if err != nil {
		return nil, err
	}

	item := new(T)
	if err := json.Unmarshal(envelope[key], item); err != nil {
		return nil, errors.NewSchemaValidation(redact(rawURL), []string{key}, err)
	}
	if err := c.validate.Struct(item); err != nil {
		return nil, validationError(rawURL, err)
	}
	return item, nil
}

func decodeEnvelope(body []byte, key, rawURL string) (map[string]json.RawMessage, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.NewSchemaValidation(redact(rawURL), nil, err)
	}
	raw, ok := envelope[key]
	if !ok || string(raw) == "null" {
		return nil, errors.NewSchemaValidation(redact(rawURL), []string{key}, fmt.Errorf("missing %q", key))
	}
	return envelope, nil
}

// validationError converts validator failures into a SchemaValidation error
// naming each failing field.
func validationError(rawURL string, err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.NewSchemaValidation(redact(rawURL), nil, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Namespace()+":"+fe.Tag())
	}
	return errors.NewSchemaValidation(redact(rawURL), fields, fmt.Errorf("%d field(s) failed validation", len(fields)))
}

// redact strips api_key from a URL so it can be logged or returned.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if !q.Has("api_key") {
		return rawURL
	}
	q.Del("api_key")
	u.RawQuery = q.Encode()
	return u.String()
}

// ParseDate parses an upstream date, either "2006-01-02" or RFC 3339.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}
	return t.UTC(), nil
}

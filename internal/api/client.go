package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Backend is the REST surface the stores synchronize against.
// This interface is implemented by *Client and can be faked in tests.
type Backend interface {
	ListCategorias(ctx context.Context) ([]Categoria, error)
	CreateCategoria(ctx context.Context, req CategoriaRequest) (Categoria, error)
	UpdateCategoria(ctx context.Context, id int64, req CategoriaRequest) (Categoria, error)
	DeleteCategoria(ctx context.Context, id int64) error

	ListProdutos(ctx context.Context) ([]Produto, error)
	CreateProduto(ctx context.Context, req ProdutoRequest) (Produto, error)
	UpdateProduto(ctx context.Context, id int64, req ProdutoRequest) (Produto, error)
	DeleteProduto(ctx context.Context, id int64) error

	ListListas(ctx context.Context) ([]Lista, error)
	CreateLista(ctx context.Context, req ListaRequest) (Lista, error)
	UpdateLista(ctx context.Context, id int64, req ListaRequest) (Lista, error)
	DeleteLista(ctx context.Context, id int64) error

	AddItem(ctx context.Context, listaID int64, req ItemRequest) (Lista, error)
	UpdateItem(ctx context.Context, listaID, produtoID int64, req ItemUpdateRequest) (Lista, error)
	RemoveItem(ctx context.Context, listaID, produtoID int64) error
}

// Ensure Client implements Backend at compile time.
var _ Backend = (*Client)(nil)

const (
	defaultBaseURL   = "http://127.0.0.1:8080/api"
	defaultUserAgent = "despensa/0.1"
	defaultTimeout   = 10 * time.Second
	maxErrorBody     = 64 << 10
	requestIDHeader  = "X-Request-ID"
)

var validate = newValidator()

// Client talks to the shopping-list REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for per-request debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client rooted at baseURL, e.g. http://host:8080/api.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListCategorias fetches every category.
func (c *Client) ListCategorias(ctx context.Context) ([]Categoria, error) {
	var out []Categoria
	if err := c.do(ctx, http.MethodGet, nil, &out, "categorias"); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCategoria creates a category and returns it with its server id.
func (c *Client) CreateCategoria(ctx context.Context, req CategoriaRequest) (Categoria, error) {
	var out Categoria
	if err := c.do(ctx, http.MethodPost, req, &out, "categorias"); err != nil {
		return Categoria{}, err
	}
	return out, nil
}

// UpdateCategoria replaces a category's fields.
func (c *Client) UpdateCategoria(ctx context.Context, id int64, req CategoriaRequest) (Categoria, error) {
	var out Categoria
	if err := c.do(ctx, http.MethodPut, req, &out, "categorias", idSegment(id)); err != nil {
		return Categoria{}, err
	}
	return out, nil
}

// DeleteCategoria deletes a category. The backend refuses while products reference it.
func (c *Client) DeleteCategoria(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, nil, nil, "categorias", idSegment(id))
}

// ListProdutos fetches every product.
func (c *Client) ListProdutos(ctx context.Context) ([]Produto, error) {
	var out []Produto
	if err := c.do(ctx, http.MethodGet, nil, &out, "produtos"); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProduto creates a product.
func (c *Client) CreateProduto(ctx context.Context, req ProdutoRequest) (Produto, error) {
	var out Produto
	if err := c.do(ctx, http.MethodPost, req, &out, "produtos"); err != nil {
		return Produto{}, err
	}
	return out, nil
}

// UpdateProduto replaces a product's fields.
func (c *Client) UpdateProduto(ctx context.Context, id int64, req ProdutoRequest) (Produto, error) {
	var out Produto
	if err := c.do(ctx, http.MethodPut, req, &out, "produtos", idSegment(id)); err != nil {
		return Produto{}, err
	}
	return out, nil
}

// DeleteProduto deletes a product.
func (c *Client) DeleteProduto(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, nil, nil, "produtos", idSegment(id))
}

// ListListas fetches every shopping list with its items.
func (c *Client) ListListas(ctx context.Context) ([]Lista, error) {
	var out []Lista
	if err := c.do(ctx, http.MethodGet, nil, &out, "listas"); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateLista creates a shopping list.
func (c *Client) CreateLista(ctx context.Context, req ListaRequest) (Lista, error) {
	var out Lista
	if err := c.do(ctx, http.MethodPost, req, &out, "listas"); err != nil {
		return Lista{}, err
	}
	return out, nil
}

// UpdateLista updates list metadata. The response may omit itens.
func (c *Client) UpdateLista(ctx context.Context, id int64, req ListaRequest) (Lista, error) {
	var out Lista
	if err := c.do(ctx, http.MethodPut, req, &out, "listas", idSegment(id)); err != nil {
		return Lista{}, err
	}
	return out, nil
}

// DeleteLista deletes a shopping list and its items.
func (c *Client) DeleteLista(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, nil, nil, "listas", idSegment(id))
}

// AddItem adds a product to a list and returns the full updated list.
func (c *Client) AddItem(ctx context.Context, listaID int64, req ItemRequest) (Lista, error) {
	var out Lista
	if err := c.do(ctx, http.MethodPost, req, &out, "listas", idSegment(listaID), "itens"); err != nil {
		return Lista{}, err
	}
	return out, nil
}

// UpdateItem changes quantity/price of the item for produtoID and returns the full list.
func (c *Client) UpdateItem(ctx context.Context, listaID, produtoID int64, req ItemUpdateRequest) (Lista, error) {
	var out Lista
	if err := c.do(ctx, http.MethodPut, req, &out, "listas", idSegment(listaID), "itens", idSegment(produtoID)); err != nil {
		return Lista{}, err
	}
	return out, nil
}

// RemoveItem removes the item for produtoID. The backend answers with no body.
func (c *Client) RemoveItem(ctx context.Context, listaID, produtoID int64) error {
	return c.do(ctx, http.MethodDelete, nil, nil, "listas", idSegment(listaID), "itens", idSegment(produtoID))
}

func (c *Client) do(ctx context.Context, method string, body, dest any, segments ...string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	reqURL := c.baseURL.JoinPath(segments...)
	path := "/" + strings.Join(segments, "/")

	var reader io.Reader
	if body != nil {
		if err := validateRequest(method, path, body); err != nil {
			return err
		}
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.Any("error", err))
		return transportError(method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
		slog.String("request_id", requestID))

	if resp.StatusCode >= 400 {
		message := readErrorMessage(resp.Body)
		return &Error{
			Kind:    classifyStatus(method, resp.StatusCode, message),
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: message,
		}
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &Error{
			Kind:   KindDecode,
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Message)
}

func validateRequest(method, path string, body any) error {
	err := validate.Struct(body)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate request: %w", err)
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, describeFieldError(fe))
	}
	return &Error{
		Kind:    KindValidation,
		Method:  method,
		Path:    path,
		Message: strings.Join(parts, "; "),
		Err:     err,
	}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s é obrigatório", fe.Field())
	case "gte", "gt":
		return fmt.Sprintf("%s deve ser %s %s", fe.Field(), comparisonWord(fe.Tag()), fe.Param())
	default:
		return fmt.Sprintf("%s inválido", fe.Field())
	}
}

func comparisonWord(tag string) string {
	if tag == "gt" {
		return "maior que"
	}
	return "maior ou igual a"
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

func idSegment(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client defines the storefront operations the sync engine needs.
// All methods are blocking round trips; retry policy belongs to the caller.
type Client interface {
	// CreateProduct creates the parent entity with its declared option
	// axes in one call. The returned Product carries the axis IDs that
	// Shopify assigned, which are required for variant creation.
	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)
	// CreateVariantsBulk creates children under an existing product in a
	// single call. Partial success is possible: both Created and Errors
	// may be populated.
	CreateVariantsBulk(ctx context.Context, productID string, in []VariantInput) (*VariantsResult, error)
	// GetProduct fetches a product by ID. Variants are fetched only when
	// withVariants is set, to keep the forward-pointer path cheap.
	GetProduct(ctx context.Context, id string, withVariants bool) (*Product, error)
	// FindProductByHandle looks a product up by its handle with full
	// child data. Returns (nil, nil) when absent.
	FindProductByHandle(ctx context.Context, handle string) (*Product, error)
	// MetaobjectCatalog returns every option-value metaobject of the
	// store in one bulk query.
	MetaobjectCatalog(ctx context.Context) ([]MetaobjectValue, error)
	// UpdateVariant applies a field-level price update to one variant.
	UpdateVariant(ctx context.Context, productID string, in VariantUpdate) error
	// UpdateProductStatus sets the product status (ACTIVE, DRAFT).
	UpdateProductStatus(ctx context.Context, productID, status string) error
}

type graphqlClient struct {
	endpoint string
	token    string
	http     *http.Client
}

// NewClient creates an admin GraphQL client for one store.
func NewClient(cfg Config) (Client, error) {
	if cfg.Domain == "" || cfg.Token == "" {
		return nil, fmt.Errorf("shopify: domain and token are required")
	}

	version := cfg.APIVersion
	if version == "" {
		version = "2024-10"
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ResponseHeaderTimeout: timeoutDuration,
	}

	return &graphqlClient{
		endpoint: fmt.Sprintf("https://%s/admin/api/%s/graphql.json", cfg.Domain, version),
		token:    cfg.Token,
		http: &http.Client{
			Transport: transport,
			Timeout:   timeoutDuration,
		},
	}, nil
}

// post executes one GraphQL request and decodes data into out.
// Transport failures and top-level GraphQL errors come back as Go errors;
// userErrors inside mutations are left to the individual operations.
func (c *graphqlClient) post(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": vars,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("shopify: network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("shopify: rate limit exceeded (429)")
	}
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("shopify: status %d: %s", resp.StatusCode, string(payload))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("shopify: decode failed: %w", err)
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			messages = append(messages, e.Message)
		}
		return fmt.Errorf("GraphQL query error: %s", strings.Join(messages, "; "))
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("shopify: decode data failed: %w", err)
		}
	}
	return nil
}

// money formats a price the way the admin API expects.
func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// productNode is the wire shape shared by every query that returns a product.
type productNode struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Handle  string `json:"handle"`
	Status  string `json:"status"`
	Options []struct {
		ID     string   `json:"id"`
		Name   string   `json:"name"`
		Values []string `json:"values"`
	} `json:"options"`
	Variants struct {
		Nodes []variantNode `json:"nodes"`
	} `json:"variants"`
}

type variantNode struct {
	ID            string `json:"id"`
	SKU           string `json:"sku"`
	Title         string `json:"title"`
	InventoryItem struct {
		ID string `json:"id"`
	} `json:"inventoryItem"`
}

type userErrorNode struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func (n *productNode) toProduct() *Product {
	p := &Product{
		ID:     n.ID,
		Title:  n.Title,
		Handle: n.Handle,
		Status: n.Status,
	}
	for _, o := range n.Options {
		p.Options = append(p.Options, Option{ID: o.ID, Name: o.Name, Values: o.Values})
	}
	for _, v := range n.Variants.Nodes {
		p.Variants = append(p.Variants, v.toVariant())
	}
	return p
}

func (n *variantNode) toVariant() Variant {
	return Variant{
		ID:              n.ID,
		SKU:             n.SKU,
		Title:           n.Title,
		InventoryItemID: n.InventoryItem.ID,
	}
}

func toUserErrors(nodes []userErrorNode) []UserError {
	errs := make([]UserError, 0, len(nodes))
	for _, n := range nodes {
		errs = append(errs, UserError{Field: strings.Join(n.Field, "."), Message: n.Message})
	}
	return errs
}

const productCreateMutation = `
mutation productCreate($product: ProductCreateInput!) {
  productCreate(product: $product) {
    product {
      id
      title
      handle
      status
      options { id name values }
    }
    userErrors { field message }
  }
}`

func (c *graphqlClient) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	options := make([]map[string]any, 0, len(in.Options))
	for _, axis := range in.Options {
		values := make([]map[string]any, 0, len(axis.Values))
		for _, v := range axis.Values {
			values = append(values, map[string]any{"name": v})
		}
		options = append(options, map[string]any{"name": axis.Name, "values": values})
	}

	product := map[string]any{
		"title":           in.Title,
		"descriptionHtml": in.DescriptionHTML,
	}
	if in.Handle != "" {
		product["handle"] = in.Handle
	}
	if in.Status != "" {
		product["status"] = in.Status
	}
	if len(options) > 0 {
		product["productOptions"] = options
	}

	var out struct {
		ProductCreate struct {
			Product    *productNode    `json:"product"`
			UserErrors []userErrorNode `json:"userErrors"`
		} `json:"productCreate"`
	}
	if err := c.post(ctx, productCreateMutation, map[string]any{"product": product}, &out); err != nil {
		return nil, err
	}

	if len(out.ProductCreate.UserErrors) > 0 {
		return nil, &UserErrorsError{Mutation: "productCreate", Errors: toUserErrors(out.ProductCreate.UserErrors)}
	}
	if out.ProductCreate.Product == nil {
		return nil, fmt.Errorf("shopify productCreate: empty response")
	}
	return out.ProductCreate.Product.toProduct(), nil
}

const variantsBulkCreateMutation = `
mutation variantsBulkCreate($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
  productVariantsBulkCreate(productId: $productId, variants: $variants) {
    productVariants {
      id
      sku
      title
      inventoryItem { id }
    }
    userErrors { field message }
  }
}`

func (c *graphqlClient) CreateVariantsBulk(ctx context.Context, productID string, in []VariantInput) (*VariantsResult, error) {
	variants := make([]map[string]any, 0, len(in))
	for _, v := range in {
		entry := map[string]any{
			"price": money(v.Price),
			"inventoryItem": map[string]any{
				"sku": v.SKU,
			},
		}
		if v.Barcode != "" {
			entry["barcode"] = v.Barcode
		}
		if v.CompareAtPrice != nil {
			entry["compareAtPrice"] = money(*v.CompareAtPrice)
		}
		if len(v.OptionValues) > 0 {
			values := make([]map[string]any, 0, len(v.OptionValues))
			for _, ov := range v.OptionValues {
				value := map[string]any{"optionId": ov.OptionID}
				if ov.LinkedMetafieldValue != "" {
					value["linkedMetafieldValue"] = ov.LinkedMetafieldValue
				} else {
					value["name"] = ov.Name
				}
				values = append(values, value)
			}
			entry["optionValues"] = values
		}
		variants = append(variants, entry)
	}

	var out struct {
		ProductVariantsBulkCreate struct {
			ProductVariants []variantNode   `json:"productVariants"`
			UserErrors      []userErrorNode `json:"userErrors"`
		} `json:"productVariantsBulkCreate"`
	}
	vars := map[string]any{"productId": productID, "variants": variants}
	if err := c.post(ctx, variantsBulkCreateMutation, vars, &out); err != nil {
		return nil, err
	}

	result := &VariantsResult{
		Errors: toUserErrors(out.ProductVariantsBulkCreate.UserErrors),
	}
	for _, n := range out.ProductVariantsBulkCreate.ProductVariants {
		result.Created = append(result.Created, n.toVariant())
	}
	return result, nil
}

const productByIDQuery = `
query product($id: ID!, $withVariants: Boolean!) {
  product(id: $id) {
    id
    title
    handle
    status
    options { id name values }
    variants(first: 100) @include(if: $withVariants) {
      nodes {
        id
        sku
        title
        inventoryItem { id }
      }
    }
  }
}`

func (c *graphqlClient) GetProduct(ctx context.Context, id string, withVariants bool) (*Product, error) {
	var out struct {
		Product *productNode `json:"product"`
	}
	vars := map[string]any{"id": id, "withVariants": withVariants}
	if err := c.post(ctx, productByIDQuery, vars, &out); err != nil {
		return nil, err
	}
	if out.Product == nil {
		return nil, nil
	}
	return out.Product.toProduct(), nil
}

const productByHandleQuery = `
query productByHandle($query: String!) {
  products(first: 1, query: $query) {
    nodes {
      id
      title
      handle
      status
      options { id name values }
      variants(first: 100) {
        nodes {
          id
          sku
          title
          inventoryItem { id }
        }
      }
    }
  }
}`

func (c *graphqlClient) FindProductByHandle(ctx context.Context, handle string) (*Product, error) {
	var out struct {
		Products struct {
			Nodes []productNode `json:"nodes"`
		} `json:"products"`
	}
	vars := map[string]any{"query": fmt.Sprintf("handle:%s", handle)}
	if err := c.post(ctx, productByHandleQuery, vars, &out); err != nil {
		return nil, err
	}
	if len(out.Products.Nodes) == 0 {
		return nil, nil
	}
	return out.Products.Nodes[0].toProduct(), nil
}

const metaobjectCatalogQuery = `
query optionValueCatalog($type: String!, $first: Int!, $after: String) {
  metaobjects(type: $type, first: $first, after: $after) {
    nodes {
      id
      displayName
    }
    pageInfo { hasNextPage endCursor }
  }
}`

func (c *graphqlClient) MetaobjectCatalog(ctx context.Context) ([]MetaobjectValue, error) {
	var catalog []MetaobjectValue
	var cursor *string

	for {
		var out struct {
			Metaobjects struct {
				Nodes []struct {
					ID          string `json:"id"`
					DisplayName string `json:"displayName"`
				} `json:"nodes"`
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
			} `json:"metaobjects"`
		}
		vars := map[string]any{"type": "shopify--color-pattern", "first": 250}
		if cursor != nil {
			vars["after"] = *cursor
		}
		if err := c.post(ctx, metaobjectCatalogQuery, vars, &out); err != nil {
			return nil, err
		}

		for _, n := range out.Metaobjects.Nodes {
			catalog = append(catalog, MetaobjectValue{Label: n.DisplayName, ReferenceID: n.ID})
		}
		if !out.Metaobjects.PageInfo.HasNextPage {
			break
		}
		end := out.Metaobjects.PageInfo.EndCursor
		cursor = &end
	}

	return catalog, nil
}

const variantsBulkUpdateMutation = `
mutation variantsBulkUpdate($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
  productVariantsBulkUpdate(productId: $productId, variants: $variants) {
    productVariants { id }
    userErrors { field message }
  }
}`

func (c *graphqlClient) UpdateVariant(ctx context.Context, productID string, in VariantUpdate) error {
	variant := map[string]any{
		"id":    in.VariantID,
		"price": money(in.Price),
	}
	if in.CompareAtPrice != nil {
		variant["compareAtPrice"] = money(*in.CompareAtPrice)
	} else {
		variant["compareAtPrice"] = nil
	}

	var out struct {
		ProductVariantsBulkUpdate struct {
			UserErrors []userErrorNode `json:"userErrors"`
		} `json:"productVariantsBulkUpdate"`
	}
	vars := map[string]any{"productId": productID, "variants": []any{variant}}
	if err := c.post(ctx, variantsBulkUpdateMutation, vars, &out); err != nil {
		return err
	}

	if len(out.ProductVariantsBulkUpdate.UserErrors) > 0 {
		return &UserErrorsError{Mutation: "productVariantsBulkUpdate", Errors: toUserErrors(out.ProductVariantsBulkUpdate.UserErrors)}
	}
	return nil
}

const productUpdateMutation = `
mutation productUpdate($product: ProductUpdateInput!) {
  productUpdate(product: $product) {
    product { id }
    userErrors { field message }
  }
}`

func (c *graphqlClient) UpdateProductStatus(ctx context.Context, productID, status string) error {
	var out struct {
		ProductUpdate struct {
			UserErrors []userErrorNode `json:"userErrors"`
		} `json:"productUpdate"`
	}
	vars := map[string]any{"product": map[string]any{"id": productID, "status": status}}
	if err := c.post(ctx, productUpdateMutation, vars, &out); err != nil {
		return err
	}

	if len(out.ProductUpdate.UserErrors) > 0 {
		return &UserErrorsError{Mutation: "productUpdate", Errors: toUserErrors(out.ProductUpdate.UserErrors)}
	}
	return nil
}

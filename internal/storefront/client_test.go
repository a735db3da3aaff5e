package storefront

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"salesrep_sync/platform/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	domain  string
	version string
	token   string
}

func (c testConfig) GetStoreDomain() string              { return c.domain }
func (c testConfig) GetAPIVersion() string               { return c.version }
func (c testConfig) GetAdminToken() string               { return c.token }
func (c testConfig) GetStorefrontTimeout() time.Duration { return 5 * time.Second }

type recordedRequest struct {
	Path      string
	Token     string
	Query     string
	Variables map[string]any
}

type recorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (r *recorder) add(req recordedRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.reqs...)
}

// newTestClient serves every request with handle and records what was sent.
func newTestClient(t *testing.T, handle func(req recordedRequest) (int, string)) (*Client, *recorder) {
	t.Helper()
	seen := &recorder{}

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		_ = json.Unmarshal(raw, &body)
		rec := recordedRequest{
			Path:      r.URL.Path,
			Token:     r.Header.Get("X-Shopify-Access-Token"),
			Query:     body.Query,
			Variables: body.Variables,
		}
		seen.add(rec)

		status, resp := handle(rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig{
		domain:  strings.TrimPrefix(srv.URL, "https://"),
		version: "2024-01",
		token:   "shpat_test",
	}
	client, err := New(cfg, nil, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return client, seen
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "https://shop.myshopify.com/admin/api/2024-01/graphql.json", Endpoint("shop.myshopify.com", "2024-01"))
}

func TestNew_RequiresTokenAndDomain(t *testing.T) {
	_, err := New(testConfig{domain: "shop", version: "2024-01"}, nil)
	assert.True(t, apperr.Is(err, apperr.KindConfiguration))

	_, err = New(testConfig{version: "2024-01", token: "x"}, nil)
	assert.True(t, apperr.Is(err, apperr.KindConfiguration))
}

func TestExecute_SendsTokenAndDocument(t *testing.T) {
	client, seen := newTestClient(t, func(recordedRequest) (int, string) {
		return http.StatusOK, `{"data":{"ok":true}}`
	})

	resp, err := client.Execute(context.Background(), CustomerByEmailQuery, map[string]any{"query": "x"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"ok":true}`, string(resp.Data))
	require.Len(t, seen.all(), 1)
	got := seen.all()[0]
	assert.Equal(t, "/admin/api/2024-01/graphql.json", got.Path)
	assert.Equal(t, "shpat_test", got.Token)
	assert.Equal(t, CustomerByEmailQuery, got.Query)
	assert.Equal(t, "x", got.Variables["query"])
}

func TestExecute_ErrorListIsUpstream(t *testing.T) {
	client, _ := newTestClient(t, func(recordedRequest) (int, string) {
		return http.StatusOK, `{"data":null,"errors":[{"message":"Throttled"},{"message":"Other"}]}`
	})

	_, err := client.Execute(context.Background(), SalesRepsQuery, nil)
	require.Error(t, err)

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindUpstream, appErr.Kind)
	list, ok := appErr.Details.([]GraphQLError)
	require.True(t, ok)
	assert.Len(t, list, 2)
}

func TestExecute_TransportFailures(t *testing.T) {
	cases := map[string]func(recordedRequest) (int, string){
		"non-2xx":   func(recordedRequest) (int, string) { return http.StatusBadGateway, `upstream down` },
		"malformed": func(recordedRequest) (int, string) { return http.StatusOK, `{"data":` },
	}
	for name, handle := range cases {
		t.Run(name, func(t *testing.T) {
			client, _ := newTestClient(t, handle)
			_, err := client.Execute(context.Background(), SalesRepsQuery, nil)
			assert.True(t, apperr.Is(err, apperr.KindTransport), "got %v", err)
		})
	}
}

func TestExecute_CancelledContextIsTransport(t *testing.T) {
	client, _ := newTestClient(t, func(recordedRequest) (int, string) {
		return http.StatusOK, `{"data":{}}`
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Execute(ctx, SalesRepsQuery, nil)
	assert.True(t, apperr.Is(err, apperr.KindTransport))
}

func TestCustomerByEmail(t *testing.T) {
	client, seen := newTestClient(t, func(recordedRequest) (int, string) {
		return http.StatusOK, `{"data":{"customers":{"nodes":[{"id":"gid://shopify/Customer/1","email":"A@B.com","tags":null}]}}}`
	})

	customer, err := client.CustomerByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, "gid://shopify/Customer/1", customer.ID)
	assert.NotNil(t, customer.Tags)
	assert.Equal(t, `email:"a@b.com"`, seen.all()[0].Variables["query"])
}

func TestCustomerByEmail_FuzzyHitIsNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(recordedRequest) (int, string) {
		return http.StatusOK, `{"data":{"customers":{"nodes":[{"id":"gid://shopify/Customer/2","email":"other@b.com","tags":[]}]}}}`
	})

	customer, err := client.CustomerByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Nil(t, customer)
}

func TestCustomerByEmail_ExactMatchBehindFuzzyHit(t *testing.T) {
	client, seen := newTestClient(t, func(req recordedRequest) (int, string) {
		first, _ := req.Variables["first"].(float64)
		nodes := []string{
			`{"id":"gid://shopify/Customer/7","email":"a@b.com.mx","tags":[]}`,
			`{"id":"gid://shopify/Customer/8","email":"a@b.com","tags":["vip"]}`,
		}
		if int(first) < len(nodes) {
			nodes = nodes[:int(first)]
		}
		return http.StatusOK, `{"data":{"customers":{"nodes":[` + strings.Join(nodes, ",") + `]}}}`
	})

	customer, err := client.CustomerByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, "gid://shopify/Customer/8", customer.ID)
	assert.Equal(t, []string{"vip"}, customer.Tags)
	require.Len(t, seen.all(), 1)
	assert.EqualValues(t, CustomerSearchPageSize, seen.all()[0].Variables["first"])
}

func TestSalesReps_MapsMetaobjectFields(t *testing.T) {
	client, seen := newTestClient(t, func(recordedRequest) (int, string) {
		return http.StatusOK, `{"data":{"metaobjects":{"nodes":[
			{"id":"gid://shopify/Metaobject/1","handle":"jane-doe",
			 "name":{"value":"Jane Doe"},"email":{"value":"jane@example.com"},
			 "phone":{"value":"650 253 0000"},"extension":null,
			 "image":{"reference":{"image":{"url":"https://cdn.example.com/jane.png"}}}},
			{"id":"gid://shopify/Metaobject/9","handle":"onboarding","name":null,"email":null,"phone":null,"extension":null,"image":null}
		]}}}`
	})

	reps, err := client.SalesReps(context.Background())
	require.NoError(t, err)

	require.Len(t, reps, 2)
	assert.Equal(t, SalesRep{
		ID:       "gid://shopify/Metaobject/1",
		Handle:   "jane-doe",
		Name:     "Jane Doe",
		Email:    "jane@example.com",
		Phone:    "650 253 0000",
		ImageURL: "https://cdn.example.com/jane.png",
	}, reps[0])
	assert.Equal(t, SalesRep{ID: "gid://shopify/Metaobject/9", Handle: "onboarding"}, reps[1])
	assert.Equal(t, MetaobjectTypeSalesRep, seen.all()[0].Variables["type"])
	assert.EqualValues(t, SalesRepPageSize, seen.all()[0].Variables["first"])
}

func TestRemoveTags_UserErrorsAreUpstream(t *testing.T) {
	client, _ := newTestClient(t, func(recordedRequest) (int, string) {
		return http.StatusOK, `{"data":{"tagsRemove":{"node":null,"userErrors":[{"field":["id"],"message":"Customer does not exist"}]}}}`
	})

	err := client.RemoveTags(context.Background(), "gid://shopify/Customer/1", []string{"sales_rep:Jane"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
	assert.Contains(t, err.Error(), "id: Customer does not exist")
}

func TestAssignSalesRep_SendsCombinedMutation(t *testing.T) {
	client, seen := newTestClient(t, func(recordedRequest) (int, string) {
		return http.StatusOK, `{"data":{
			"metafieldsSet":{"metafields":[{"id":"gid://shopify/Metafield/5","namespace":"suavecito","key":"sales_rep","type":"metaobject_reference","value":"gid://shopify/Metaobject/1"}],"userErrors":[]},
			"tagsAdd":{"node":{"id":"gid://shopify/Customer/1"},"userErrors":[]}}}`
	})

	res, err := client.AssignSalesRep(context.Background(), "gid://shopify/Customer/1", MetafieldInput{
		Namespace: "suavecito",
		Key:       "sales_rep",
		Type:      "metaobject_reference",
		Value:     "gid://shopify/Metaobject/1",
	}, []string{"Jane Doe", "sales_rep:Jane Doe"})
	require.NoError(t, err)

	value, ok := res.MetafieldValue("suavecito", "sales_rep")
	assert.True(t, ok)
	assert.Equal(t, "gid://shopify/Metaobject/1", value)

	require.Len(t, seen.all(), 1)
	vars := seen.all()[0].Variables
	assert.Equal(t, "gid://shopify/Customer/1", vars["id"])
	metafields := vars["metafields"].([]any)
	assert.Equal(t, "gid://shopify/Customer/1", metafields[0].(map[string]any)["ownerId"])
}

func TestAssignSalesRep_UserErrorsAreUpstream(t *testing.T) {
	client, _ := newTestClient(t, func(recordedRequest) (int, string) {
		return http.StatusOK, `{"data":{
			"metafieldsSet":{"metafields":[],"userErrors":[{"field":["metafields","0","value"],"message":"Value must be a metaobject reference","code":"INVALID_VALUE"}]},
			"tagsAdd":{"node":null,"userErrors":[]}}}`
	})

	_, err := client.AssignSalesRep(context.Background(), "gid://shopify/Customer/1", MetafieldInput{}, nil)
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
}

func TestOperationName(t *testing.T) {
	assert.Equal(t, "CustomerByEmail", operationName(CustomerByEmailQuery))
	assert.Equal(t, "AssignSalesRep", operationName(AssignSalesRepMutation))
	assert.Equal(t, "anonymous", operationName("{ shop { name } }"))
}

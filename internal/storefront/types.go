package storefront

import (
	"fmt"
	"strings"
)

// MetaobjectTypeSalesRep is the metaobject type holding sales rep profiles.
const MetaobjectTypeSalesRep = "sales_rep"

// SalesRepPageSize is the number of rep metaobjects fetched per request.
const SalesRepPageSize = 25

// CustomerSearchPageSize is the number of search hits scanned for an exact
// email match.
const CustomerSearchPageSize = 10

// Customer is the storefront customer record as seen by this service.
type Customer struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Tags  []string `json:"tags"`
}

// SalesRep is a sales rep metaobject.
type SalesRep struct {
	ID        string `json:"id"`
	Handle    string `json:"handle"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Extension string `json:"extension,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// MetafieldInput is one entry of a metafieldsSet call.
type MetafieldInput struct {
	OwnerID   string `json:"ownerId"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

// Metafield is a metafield returned by metafieldsSet.
type Metafield struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

// UserError is a mutation-level validation error.
type UserError struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
}

// AssignResult is the combined metafieldsSet + tagsAdd response.
type AssignResult struct {
	MetafieldsSet struct {
		Metafields []Metafield `json:"metafields"`
		UserErrors []UserError `json:"userErrors"`
	} `json:"metafieldsSet"`
	TagsAdd struct {
		Node *struct {
			ID string `json:"id"`
		} `json:"node"`
		UserErrors []UserError `json:"userErrors"`
	} `json:"tagsAdd"`
}

// MetafieldValue returns the value written under namespace/key, if any.
func (r *AssignResult) MetafieldValue(namespace, key string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, m := range r.MetafieldsSet.Metafields {
		if m.Namespace == namespace && m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}

func formatUserErrors(action string, errs []UserError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		field := strings.Join(e.Field, ".")
		if field == "" {
			parts = append(parts, e.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Message))
	}
	return fmt.Sprintf("storefront %s failed: %s", action, strings.Join(parts, "; "))
}

type fieldValue struct {
	Value string `json:"value"`
}

type imageField struct {
	Reference *struct {
		Image *struct {
			URL string `json:"url"`
		} `json:"image"`
	} `json:"reference"`
}

// apiSalesRep is the raw metaobject node from SalesRepsQuery.
type apiSalesRep struct {
	ID        string      `json:"id"`
	Handle    string      `json:"handle"`
	Name      *fieldValue `json:"name"`
	Email     *fieldValue `json:"email"`
	Phone     *fieldValue `json:"phone"`
	Extension *fieldValue `json:"extension"`
	Image     *imageField `json:"image"`
}

func (a *apiSalesRep) toSalesRep() SalesRep {
	rep := SalesRep{
		ID:     a.ID,
		Handle: a.Handle,
	}
	if a.Name != nil {
		rep.Name = a.Name.Value
	}
	if a.Email != nil {
		rep.Email = a.Email.Value
	}
	if a.Phone != nil {
		rep.Phone = a.Phone.Value
	}
	if a.Extension != nil {
		rep.Extension = a.Extension.Value
	}
	if a.Image != nil && a.Image.Reference != nil && a.Image.Reference.Image != nil {
		rep.ImageURL = a.Image.Reference.Image.URL
	}
	return rep
}

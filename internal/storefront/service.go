package storefront

import (
	"context"
	"encoding/json"
	"strings"

	"salesrep_sync/platform/apperr"
)

// CustomerByEmail looks a customer up by email.
// Returns nil when no customer with exactly that email exists.
func (c *Client) CustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	resp, err := c.Execute(ctx, CustomerByEmailQuery, map[string]any{
		"query": `email:"` + strings.ReplaceAll(email, `"`, `\"`) + `"`,
		"first": CustomerSearchPageSize,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Customers struct {
			Nodes []Customer `json:"nodes"`
		} `json:"customers"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, apperr.Transport("decode customers", err)
	}

	// The search index is fuzzy; only an exact email is a hit.
	for _, node := range result.Customers.Nodes {
		if strings.EqualFold(node.Email, email) {
			customer := node
			if customer.Tags == nil {
				customer.Tags = []string{}
			}
			return &customer, nil
		}
	}
	return nil, nil
}

// SalesReps fetches the current sales rep metaobjects.
func (c *Client) SalesReps(ctx context.Context) ([]SalesRep, error) {
	resp, err := c.Execute(ctx, SalesRepsQuery, map[string]any{
		"type":  MetaobjectTypeSalesRep,
		"first": SalesRepPageSize,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Metaobjects struct {
			Nodes []apiSalesRep `json:"nodes"`
		} `json:"metaobjects"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, apperr.Transport("decode metaobjects", err)
	}

	reps := make([]SalesRep, 0, len(result.Metaobjects.Nodes))
	for i := range result.Metaobjects.Nodes {
		reps = append(reps, result.Metaobjects.Nodes[i].toSalesRep())
	}
	return reps, nil
}

// RemoveTags removes tags from a customer.
func (c *Client) RemoveTags(ctx context.Context, customerID string, tags []string) error {
	resp, err := c.Execute(ctx, TagsRemoveMutation, map[string]any{
		"id":   customerID,
		"tags": tags,
	})
	if err != nil {
		return err
	}

	var result struct {
		TagsRemove struct {
			UserErrors []UserError `json:"userErrors"`
		} `json:"tagsRemove"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return apperr.Transport("decode tagsRemove", err)
	}
	if len(result.TagsRemove.UserErrors) > 0 {
		return apperr.Upstream(formatUserErrors("tagsRemove", result.TagsRemove.UserErrors), result.TagsRemove.UserErrors)
	}
	return nil
}

// AssignSalesRep sets the rep metafield and adds tags in a single mutation.
func (c *Client) AssignSalesRep(ctx context.Context, customerID string, metafield MetafieldInput, tags []string) (*AssignResult, error) {
	metafield.OwnerID = customerID
	resp, err := c.Execute(ctx, AssignSalesRepMutation, map[string]any{
		"metafields": []MetafieldInput{metafield},
		"id":         customerID,
		"tags":       tags,
	})
	if err != nil {
		return nil, err
	}

	var result AssignResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, apperr.Transport("decode assignment", err)
	}
	if errs := result.MetafieldsSet.UserErrors; len(errs) > 0 {
		return nil, apperr.Upstream(formatUserErrors("metafieldsSet", errs), errs)
	}
	if errs := result.TagsAdd.UserErrors; len(errs) > 0 {
		return nil, apperr.Upstream(formatUserErrors("tagsAdd", errs), errs)
	}
	return &result, nil
}

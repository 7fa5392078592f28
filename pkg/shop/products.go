package shop

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type productsPage struct {
	Products []wireProduct `json:"products"`
}

type wireProduct struct {
	ID     int64  `json:"id"`
	Handle string `json:"handle"`
}

// ResolveHandles resolves product ids to their public handles in one batch
// call. Products the platform no longer knows, or that have no handle, are
// simply absent from the result; a shorter map is expected, not an error.
func (c *Client) ResolveHandles(ctx context.Context, ids []int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}

	idList := make([]string, 0, len(ids))
	for _, id := range ids {
		idList = append(idList, strconv.FormatInt(id, 10))
	}

	query := url.Values{}
	query.Set("ids", strings.Join(idList, ","))
	query.Set("fields", "id,handle")
	query.Set("limit", strconv.Itoa(len(ids)))

	reqCtx, cancel := context.WithTimeout(ctx, c.config.PageTimeout)
	defer cancel()

	endpoint := c.config.BaseURL + "/products.json"
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create products request: %w", err)
	}

	var page productsPage
	if _, err := c.getJSON(req, &page); err != nil {
		return nil, err
	}

	handles := make(map[int64]string, len(page.Products))
	for _, p := range page.Products {
		if p.Handle == "" {
			continue
		}
		handles[p.ID] = p.Handle
	}

	c.logger.Debug().
		Int("requested", len(ids)).
		Int("resolved", len(handles)).
		Msg("Product handles resolved")

	return handles, nil
}

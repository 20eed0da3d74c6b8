package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Inventories defines the inventory endpoints used by the screens.
type Inventories interface {
	ListInventories(ctx context.Context) ([]Inventory, error)
	GetInventory(ctx context.Context, id *int64) (Inventory, error)
	CreateInventory(ctx context.Context, title string) (CreateInventoryResponse, error)
}

// Inventory is one record as returned by the server.
// id, title and quantity must be present; item_image.url may be null or absent.
type Inventory struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Quantity string `json:"quantity"`
	// key matches the server wire format (snake_case)
	ItemImage ItemImage `json:"item_image"`
}

func (i *Inventory) UnmarshalJSON(data []byte) error {
	if err := requireKeys(data, "id", "title", "quantity"); err != nil {
		return fmt.Errorf("inventory: %w", err)
	}
	type plain Inventory
	return json.Unmarshal(data, (*plain)(i))
}

type ItemImage struct {
	URL *string `json:"url"`
}

type CreateInventoryRequest struct {
	Title string `json:"title"`
}

// CreateInventoryResponse is the server acknowledgment for a create call.
// All three fields must be present.
type CreateInventoryResponse struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (r *CreateInventoryResponse) UnmarshalJSON(data []byte) error {
	if err := requireKeys(data, "code", "status", "message"); err != nil {
		return fmt.Errorf("create response: %w", err)
	}
	type plain CreateInventoryResponse
	return json.Unmarshal(data, (*plain)(r))
}

var errNullObject = errors.New("null object")

// requireKeys checks that data is a JSON object holding a non-null value for every key.
func requireKeys(data []byte, keys ...string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errNullObject
	}
	for _, k := range keys {
		v, ok := fields[k]
		if !ok || string(v) == "null" {
			return fmt.Errorf("missing field %q", k)
		}
	}
	return nil
}

package ycd

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

//////////////////////////////////////////////////

// BinaryKey is the name under which node outputs attach their file.
const BinaryKey = "data"

// Item is one output record of a node execution.
type Item struct {
	JSON   map[string]any         `json:"json"`
	Binary map[string]*BinaryData `json:"binary,omitempty"`

	// Index of the input item this output was produced from.
	PairedItem int `json:"pairedItem"`
}

// BinaryData is a file attached to an Item. When a BinaryDataStore is in use,
// Data is nil and ID references the stored copy.
type BinaryData struct {
	ID            string `json:"id,omitempty"`
	Data          []byte `json:"-"`
	MimeType      string `json:"mimeType"`
	FileName      string `json:"fileName"`
	FileExtension string `json:"fileExtension,omitempty"`
	FileSize      int    `json:"fileSize"`
}

// BinaryDataStore keeps binary payloads outside of memory and returns a
// reference to the stored object.
type BinaryDataStore interface {
	Store(ctx context.Context, id string, bin *BinaryData) (ref string, err error)
}

func (it Item) Error() (msg string, ok bool) {
	if it.JSON == nil {
		return
	}

	v, exists := it.JSON["error"]
	if !exists {
		return
	}

	msg, ok = v.(string)
	return
}

func errorItem(index int, err error) Item {
	return Item{
		JSON:       map[string]any{"error": err.Error()},
		PairedItem: index,
	}
}

//////////////////////////////////////////////////

func (c *Client) prepareBinaryData(ctx context.Context, data []byte, fileName string, mimeType string) (bin *BinaryData, err error) {
	bin = &BinaryData{
		Data:          data,
		MimeType:      mimeType,
		FileName:      fileName,
		FileExtension: strings.TrimPrefix(path.Ext(fileName), "."),
		FileSize:      len(data),
	}

	if c.store == nil {
		return
	}

	ref, err := c.store.Store(ctx, uuid.NewString(), bin)
	if err != nil {
		return nil, fmt.Errorf("BinaryDataStore.Store: %w", err)
	}

	bin.ID = ref
	bin.Data = nil

	return
}

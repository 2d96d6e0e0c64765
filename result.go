package ycd

import (
	"context"
	"encoding/json"
	"fmt"
)

//////////////////////////////////////////////////

const nonJSONWarning = "Returned content is not JSON (likely ZIP archive). Returning as binary file."

// FetchResult downloads the result of a job and turns it into output items.
//
// With ReturnJSON the result is requested as JSON; an array yields one item per
// element and an object a single item. Servers answer bulk kinds with a zip
// archive regardless of Accept; such payloads are attached as a binary item
// instead of being parsed. With ReturnFile a single binary item is produced in
// the requested format.
func (c *Client) FetchResult(ctx context.Context, dl *Download, sourceURL string, mode ReturnFormat, format FileFormat, index int) (items []Item, err error) {
	if dl == nil || dl.ID == "" {
		err = InvalidDownloadID
		return
	}

	switch mode {
	case ReturnJSON, "":
		return c.fetchJSONResult(ctx, dl, sourceURL, index)

	case ReturnFile:
		if !format.Valid() {
			err = InvalidFileFormat
			return
		}

		var item Item
		item, err = c.fetchFileResult(ctx, dl.ID, format, index)
		if err != nil {
			return
		}

		item.JSON = map[string]any{
			"success":    true,
			"downloadId": dl.ID.String(),
			"url":        sourceURL,
			"status":     dl.Status.String(),
		}

		return []Item{item}, nil
	}

	err = InvalidReturnFormat
	return
}

func (c *Client) fetchJSONResult(ctx context.Context, dl *Download, sourceURL string, index int) (items []Item, err error) {
	res, err := c.SaveDownload(ctx, dl.ID, FormatJSON)
	if err != nil {
		return
	}

	if !isJSONContentType(res.ContentType) {
		var bin *BinaryData
		bin, err = c.prepareBinaryData(ctx, res.Body, attachmentName(dl.ID, "zip"), res.ContentType)
		if err != nil {
			return
		}

		c.observer.ResultMaterialized(ResultKindBinary, 1)
		return []Item{{
			JSON: map[string]any{
				"success":    true,
				"downloadId": dl.ID.String(),
				"url":        sourceURL,
				"warning":    nonJSONWarning,
				"status":     dl.Status.String(),
			},
			Binary:     map[string]*BinaryData{BinaryKey: bin},
			PairedItem: index,
		}}, nil
	}

	items, err = jsonItems(res.Body, index)
	if err != nil {
		return nil, err
	}

	c.observer.ResultMaterialized(ResultKindJSON, len(items))
	return
}

func (c *Client) fetchFileResult(ctx context.Context, id DownloadID, format FileFormat, index int) (item Item, err error) {
	res, err := c.SaveDownload(ctx, id, format)
	if err != nil {
		return
	}

	ext := Extension(format.String())
	if isZipContentType(res.ContentType) {
		ext = "zip"
	}

	mimeType := res.ContentType
	if mimeType == "" {
		mimeType = format.String()
	}

	bin, err := c.prepareBinaryData(ctx, res.Body, attachmentName(id, ext), mimeType)
	if err != nil {
		return
	}

	c.observer.ResultMaterialized(ResultKindBinary, 1)
	item = Item{
		Binary:     map[string]*BinaryData{BinaryKey: bin},
		PairedItem: index,
	}

	return
}

func jsonItems(body []byte, index int) (items []Item, err error) {
	var v any
	if err = json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	switch vv := v.(type) {
	case []any:
		items = make([]Item, 0, len(vv))
		for _, elem := range vv {
			items = append(items, Item{
				JSON:       jsonObject(elem),
				PairedItem: index,
			})
		}

	default:
		items = []Item{{
			JSON:       jsonObject(vv),
			PairedItem: index,
		}}
	}

	return
}

func jsonObject(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}

	return map[string]any{"value": v}
}

package ycd

import (
	"context"
	"strings"
)

//////////////////////////////////////////////////

// Operation is a verb of the download resource.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationGet    Operation = "get"
	OperationGetAll Operation = "getAll"
	OperationSave   Operation = "save"
)

func (op Operation) Valid() bool {
	switch op {
	case OperationCreate, OperationGet, OperationGetAll, OperationSave:
		return true
	}

	return false
}

// ResourceParams are the per-item parameters of a Resource execution. Which
// fields are read depends on Operation.
type ResourceParams struct {
	Operation Operation

	// create
	URL         string
	ContentType ContentKind

	// get, save
	DownloadID DownloadID

	// getAll
	ReturnAll bool
	Limit     int

	// save
	FileFormat FileFormat
}

// Resource exposes the individual API calls as node operations. Items are
// processed one at a time, in input order.
type Resource struct {
	client *Client
}

func NewResource(client *Client) (*Resource, error) {
	if client == nil {
		return nil, NilClient
	}

	return &Resource{client: client}, nil
}

func (r *Resource) Process(ctx context.Context, index int, params ResourceParams) (items []Item, err error) {
	c := r.client
	id := DownloadID(strings.TrimSpace(string(params.DownloadID)))

	switch params.Operation {
	case OperationCreate:
		var dl *Download
		dl, err = c.CreateDownload(ctx, params.URL, params.ContentType)
		if err != nil {
			return
		}

		return []Item{downloadItem(dl, index)}, nil

	case OperationGet:
		var dl *Download
		dl, err = c.GetDownload(ctx, id)
		if err != nil {
			return
		}

		return []Item{downloadItem(dl, index)}, nil

	case OperationGetAll:
		limit := params.Limit
		if params.ReturnAll {
			limit = 0
		} else if limit < 1 {
			limit = c.loadSettings().listLimit()
		}

		var dls []*Download
		dls, err = c.ListDownloads(ctx, limit)
		if err != nil {
			return
		}

		items = make([]Item, 0, len(dls))
		for _, dl := range dls {
			items = append(items, downloadItem(dl, index))
		}

		return

	case OperationSave:
		format := params.FileFormat
		if format == "" {
			format = FormatJSON
		}

		if !format.Valid() {
			err = InvalidFileFormat
			return
		}

		var item Item
		item, err = c.fetchFileResult(ctx, id, format, index)
		if err != nil {
			return
		}

		item.JSON = map[string]any{
			"success":    true,
			"downloadId": id.String(),
		}

		return []Item{item}, nil
	}

	err = InvalidOperation
	return
}

func (r *Resource) Execute(ctx context.Context, params []ResourceParams, opts ExecuteOptions) (items []Item, err error) {
	if ctx == nil {
		ctx = context.Background()
	} else {
		if err = ctx.Err(); err != nil {
			return
		}
	}

	for i, p := range params {
		out, err := r.Process(ctx, i, p)
		if err != nil {
			if !opts.ContinueOnFail {
				return nil, err
			}

			out = []Item{errorItem(i, err)}
		}

		items = append(items, out...)
	}

	return
}

func downloadItem(dl *Download, index int) Item {
	obj := dl.Raw
	if obj == nil {
		obj = map[string]any{
			"id":     dl.ID.String(),
			"status": dl.Status.String(),
		}
	}

	return Item{
		JSON:       obj,
		PairedItem: index,
	}
}

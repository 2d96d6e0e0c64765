package ycd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rubpy/crawly"
	"github.com/rubpy/crawly/clog"
)

//////////////////////////////////////////////////

type OrderData struct{}

func (w *Watcher) orderHandler(ctx context.Context, order *crawly.Order, result *crawly.TrackingResult) error {
	handle, ok := order.Handle.(Handle)
	if !ok || !handle.Valid() {
		return crawly.InvalidHandle
	}

	data, _ := order.Data.(OrderData)
	defer func() {
		order.Data = data
	}()

	if handle.Type == HandleSourceURL {
		id, ok := w.loadDownloadID(handle)
		if !ok {
			lp := clog.Params{
				Message: "createDownload",
				Level:   slog.LevelDebug,

				Values: clog.ParamGroup{
					"url":         handle.Value,
					"contentType": handle.Kind.String(),
				},
			}

			dl, err := w.client.CreateDownload(ctx, handle.Value, handle.Kind)
			if err == nil {
				w.storeDownloadID(handle, dl.ID)
				id = dl.ID

				lp.Set("id", dl.ID.String())
				result.Entity.Value.Data = EntityData{
					Download: dl,
					Source:   handle.Value,
				}
			} else {
				if err == InvalidURL || err == InvalidContentKind {
					err = crawly.InvalidHandle
				} else {
					err = fmt.Errorf("CreateDownload: %w", err)
				}
			}

			lp.Err = err
			w.Log(ctx, lp)

			if err != nil {
				return err
			}
		}

		if id == "" {
			return InvalidDownloadID
		}
		handle = JobID(id)
		result.Entity.Value.Handle = handle
	}

	switch handle.Type {
	case HandleDownloadID:
		if handle.Value == "" {
			return crawly.InvalidHandle
		}

	default:
		return crawly.InvalidHandle
	}

	return nil
}

package ycd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rubpy/crawly"
	"github.com/rubpy/crawly/clog"
)

//////////////////////////////////////////////////

type EntityData struct {
	Download *Download `json:"download"`
	Source   string    `json:"source,omitempty"`

	Polls     int       `json:"polls"`
	LastFetch time.Time `json:"last_fetch"`

	// Set when the last poll observed a different status than the one before.
	Changed bool `json:"changed"`
}

func (ed EntityData) Status() Status {
	if ed.Download == nil {
		return ""
	}

	return ed.Download.Status
}

func (w *Watcher) entityHandler(ctx context.Context, entity *crawly.Entity, result *crawly.TrackingResult) error {
	handle, ok := entity.Handle.(Handle)
	if !ok || !handle.Valid() {
		return crawly.InvalidHandle
	}

	data, _ := entity.Data.(EntityData)
	defer func() {
		entity.Data = data
	}()

	if handle.Type != HandleDownloadID {
		return crawly.InvalidHandle
	}

	settings := w.loadSettings()
	id := DownloadID(handle.Value)

	lp := clog.Params{
		Message: "getDownload",
		Level:   slog.LevelDebug,

		Values: clog.ParamGroup{
			"id": id.String(),
		},
	}

	dl, err := w.client.GetDownload(ctx, id)
	if err == nil {
		if dl.ID == "" {
			dl.ID = id
		}

		previous := data.Status()
		data.Download = dl
		data.Polls++
		data.LastFetch = time.Now()
		data.Changed = previous != dl.Status

		lp.Set("status", dl.Status.String())
		w.client.observer.JobPolled(dl.Status)
	} else {
		err = fmt.Errorf("GetDownload: %w", err)
	}

	lp.Err = err
	w.Log(ctx, lp)

	if err != nil {
		return err
	}

	if !dl.Status.Pending() && settings.UntrackFinished {
		result.Entity.Action = crawly.TrackingActionRemove
	}

	return nil
}

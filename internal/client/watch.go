package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/sbobine/sbobine-api/internal/domain/model"
)

// ErrStreamClosed is returned by WatchJob when the server closes the stream before
// sending a terminal record.
var ErrStreamClosed = errors.New("job stream closed before the job finished")

// WatchJob follows the job over the /job/{id}/stream WebSocket, calling onUpdate with
// each record. It returns the terminal record, or a *JobFailedError for ERROR.
func (c *Client) WatchJob(ctx context.Context, jobID string, onUpdate func(*model.JobRecord)) (*model.JobRecord, error) {
	wsURL, err := c.streamURL(jobID)
	if err != nil {
		return nil, err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, decodeAPIError(resp, msgStatusFailed)
		}
		return nil, fmt.Errorf("dial job stream: %w", err)
	}
	defer conn.Close()

	// Unblock the read loop when ctx ends.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	var last *model.JobRecord
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) && last != nil && last.Status.IsTerminal() {
				return finish(jobID, last)
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil, ErrStreamClosed
			}
			return nil, fmt.Errorf("read job stream: %w", err)
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decode stream message: %w", err)
		}
		var rec model.JobRecord
		if err := json.Unmarshal(env.Data, &rec); err != nil {
			return nil, fmt.Errorf("decode stream record: %w", err)
		}
		last = &rec
		if onUpdate != nil {
			onUpdate(last)
		}
	}
}

func finish(jobID string, rec *model.JobRecord) (*model.JobRecord, error) {
	if rec.Status == model.JobStatusError {
		return nil, jobFailed(jobID, rec)
	}
	return rec, nil
}

func (c *Client) streamURL(jobID string) (string, error) {
	u, err := url.Parse(strings.TrimRight(c.BaseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path += "/job/" + url.PathEscape(jobID) + "/stream"
	return u.String(), nil
}

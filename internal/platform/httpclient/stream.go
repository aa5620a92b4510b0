package httpclient

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Event es un Server-Sent Event ya armado.
type Event struct {
	Name string
	Data []byte
}

// Stream abre un GET text/event-stream y llama a fn por cada evento hasta
// que ctx se cancela, el servidor cierra o fn devuelve error. El timeout del
// cliente no aplica: el stream dura lo que dure ctx.
func (c *Client) Stream(ctx context.Context, pathOrURL string, fn func(Event) error) error {
	if c == nil || c.HTTP == nil {
		return errors.New("httpclient: nil client")
	}

	fullURL, err := c.resolveURL(pathOrURL)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("httpclient: new request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	hc := *c.HTTP
	hc.Timeout = 0
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := readAtMost(resp.Body, 1<<20)
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	err = readEvents(resp.Body, fn)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func readEvents(r io.Reader, fn func(Event) error) error {
	sc := bufio.NewScanner(r)
	// una lista completa de gatos viaja en una sola línea
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)

	var (
		name string
		data bytes.Buffer
	)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if data.Len() > 0 {
				ev := Event{Name: name, Data: bytes.TrimSuffix(bytes.Clone(data.Bytes()), []byte("\n"))}
				if err := fn(ev); err != nil {
					return err
				}
			}
			name = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
			// comentario / ping
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
			data.WriteByte('\n')
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("httpclient: read stream: %w", err)
	}
	return nil
}

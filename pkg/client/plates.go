package client

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	plate "github.com/brailleforge/brailleforge/pkg/types/plate"
)

// PlateModel is a generated plate downloaded from the server.
type PlateModel struct {
	// STL is the binary STL payload.
	STL []byte
	// Filename is the server-suggested download name.
	Filename string
	// Degraded is true when the boolean assembly fell back from the primary
	// engine or skipped tool primitives.
	Degraded bool
	// Watertight reports the final mesh audit.
	Watertight bool
	// Engine names the boolean engine that produced the model.
	Engine string
}

// Generate requests a plate and downloads the STL model.
func (c *Client) Generate(ctx context.Context, req plate.GenerateRequest) (*PlateModel, error) {
	resp, _, err := c.do(ctx, http.MethodPost, "/api/v1/plates/generate", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}

	model := &PlateModel{
		STL:      data,
		Engine:   resp.Header.Get("X-Plate-Engine"),
		Filename: dispositionFilename(resp.Header.Get("Content-Disposition")),
	}
	model.Degraded, _ = strconv.ParseBool(resp.Header.Get("X-Plate-Degraded"))
	model.Watertight, _ = strconv.ParseBool(resp.Header.Get("X-Plate-Watertight"))
	return model, nil
}

// Preview requests the plate statistics without downloading the model.
// The server still runs the full geometry pipeline.
func (c *Client) Preview(ctx context.Context, req plate.GenerateRequest) (*plate.Stats, error) {
	var stats plate.Stats
	if err := c.postJSON(ctx, "/api/v1/plates/preview", req, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Healthy probes the server liveness endpoint.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: HTTP %d", resp.StatusCode)
	}
	return nil
}

// dispositionFilename extracts the filename from a Content-Disposition
// header, returning "" when absent or unparseable.
func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

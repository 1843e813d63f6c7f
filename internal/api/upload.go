package api

import (
	"context"
	"net/http"
)

const kmlContentType = "application/vnd.google-earth.kml+xml"

// ImportPaddockBoundary uploads a KML boundary file for a paddock. The blob
// travels as-is; no JSON envelope.
func (c *Client) ImportPaddockBoundary(ctx context.Context, paddockID string, kml []byte) error {
	path := itemPath("paddocks", paddockID) + "/boundary"
	resp, err := c.gw.Upload(ctx, http.MethodPost, path, kmlContentType, kml)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

package core

import (
	"context"
	"net/http"
)

const UserAgent = "StalkingStairsModManager/1.0"

func GetWithUA(ctx context.Context, client *http.Client, url string, contentType string) (resp *http.Response, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", contentType)
	if client == nil {
		client = http.DefaultClient
	}
	return client.Do(req)
}

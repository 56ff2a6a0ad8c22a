package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hyperjump/sense/internal/models"
)

var httpClient = &http.Client{Timeout: 2 * time.Minute}

// decodeResponse checks the status and decodes a JSON body into out.
func decodeResponse(resp *http.Response, want int, out interface{}) error {
	defer resp.Body.Close()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(bytes.TrimSpace(b)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func postJSON(endpoint string, body interface{}) (*http.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Post(endpoint, "application/json", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	resp, err := postJSON(serverURL+"/api/v1/search", query)
	if err != nil {
		return nil, err
	}
	var out models.SearchResponse
	if err := decodeResponse(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func statusViaHTTP(serverURL string) (*models.IndexStatus, error) {
	resp, err := httpClient.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	var st models.IndexStatus
	if err := decodeResponse(resp, http.StatusOK, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func watchAddViaHTTP(serverURL, path string) error {
	resp, err := postJSON(serverURL+"/api/v1/watch/directories", map[string]interface{}{"path": path, "sync": true})
	if err != nil {
		return err
	}
	return decodeResponse(resp, http.StatusCreated, nil)
}

func watchRemoveViaHTTP(serverURL, path string) error {
	req, err := http.NewRequest(http.MethodDelete, serverURL+"/api/v1/watch/directories?path="+url.QueryEscape(path), nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return decodeResponse(resp, http.StatusOK, nil)
}

func watchListViaHTTP(serverURL string) ([]string, error) {
	resp, err := httpClient.Get(serverURL + "/api/v1/watch/directories")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	var out struct {
		Directories []string `json:"directories"`
	}
	if err := decodeResponse(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Directories, nil
}

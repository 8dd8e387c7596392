/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see internal/supervisor/supervisor.go for the full license header)
 ***************************************************************************** */

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

// apiRequest issues an HTTP request against the configured minerd daemon and
// decodes a JSON response body into out (pass nil to discard the body).
func apiRequest(method, path string, out interface{}) error {
	req, err := http.NewRequest(method, apiAddr+path, bytes.NewReader(nil))
	if err != nil {
		return err
	}
	if apiKey != "" {
		req.Header.Set("X-Minerd-Api-Key", apiKey)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("contacting minerd at %s: %w", apiAddr, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Message != "" {
			return fmt.Errorf("%s: %s", apiErr.Error, apiErr.Message)
		}
		return fmt.Errorf("minerd returned %d: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

// printJSONOrPretty renders v as JSON if --json was passed, else falls back
// to pretty, the way each command formats itself otherwise.
func printJSONOrPretty(v interface{}, pretty func()) {
	if jsonOutput {
		data, _ := json.MarshalIndent(v, "", "  ")
		printf("%s\n", data)
		return
	}
	pretty()
}

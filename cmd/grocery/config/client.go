package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotLoggedIn is returned when a command needs a token and none is stored.
var ErrNotLoggedIn = errors.New("not logged in, run `grocery users login` first")

var httpClient = &http.Client{Timeout: 15 * time.Second}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("status %d: %s %v", e.Status, e.Message, e.Fields)
}

// CallJSON sends payload (when non-nil) to path and decodes the answer into out
// (when non-nil). authed attaches the stored token.
func CallJSON(method, path string, payload, out any, authed bool) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, APIURL()+path, reqBody)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token, err := LoadToken()
		if err != nil || token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set("x-auth-token", token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp.StatusCode, body)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("unexpected response: %w", err)
		}
	}
	return nil
}

func decodeAPIError(status int, body []byte) error {
	var payload struct {
		Message string            `json:"message"`
		Error   string            `json:"error"`
		Errors  map[string]string `json:"errors"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = string(body)
		return apiErr
	}

	apiErr.Message = payload.Message
	if apiErr.Message == "" {
		apiErr.Message = payload.Error
	}
	apiErr.Fields = payload.Errors
	return apiErr
}

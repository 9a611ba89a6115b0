package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/loeitech/booker/cmd/cli/config"
)

// Get performs a GET against the API and returns the raw body and status.
func Get(path string) ([]byte, int, error) {
	resp, err := http.Get(config.APIURL() + path)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

// PostJSON marshals payload and POSTs it to the API.
func PostJSON(path string, payload interface{}) ([]byte, int, error) {
	return sendJSON("POST", path, payload)
}

// PutJSON marshals payload and PUTs it to the API.
func PutJSON(path string, payload interface{}) ([]byte, int, error) {
	return sendJSON("PUT", path, payload)
}

// Delete performs a DELETE against the API.
func Delete(path string) ([]byte, int, error) {
	req, err := http.NewRequest("DELETE", config.APIURL()+path, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

func sendJSON(method, path string, payload interface{}) ([]byte, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequest(method, config.APIURL()+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

// ErrorMessage extracts the "error" field from an API response body, falling
// back to a generic status line when the body is not the usual error shape.
func ErrorMessage(data []byte, status int) string {
	var errResp struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(data, &errResp)
	if errResp.Error != "" {
		return errResp.Error
	}
	return fmt.Sprintf("API returned status %d", status)
}

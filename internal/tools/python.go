package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RunPythonTool executes Python code in an external sandbox service.
// The sandbox is a separate process with no access to the agent's
// database or credentials.
type RunPythonTool struct {
	baseURL    string
	httpClient *http.Client
}

// NewRunPythonTool creates a sandboxed Python execution tool. An empty
// baseURL disables the tool at execution time, not at registration.
func NewRunPythonTool(baseURL string) *RunPythonTool {
	return &RunPythonTool{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (t *RunPythonTool) Name() string { return "run_python_code" }

func (t *RunPythonTool) Description() string {
	return "Execute Python code in an isolated sandbox and return stdout/stderr. Use for calculations, data processing, and quick analysis. No network or filesystem persistence between calls."
}

func (t *RunPythonTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"code": map[string]any{
				"type":        "string",
				"description": "Python source to execute. Print anything you want returned.",
			},
		},
		"required": []string{"code"},
	}
}

type sandboxRequest struct {
	Code string `json:"code"`
}

type sandboxResponse struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
	Error    string `json:"error,omitempty"`
}

func (t *RunPythonTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	code := GetString(params, "code", "")
	if code == "" {
		return "Error: code parameter is required", nil
	}
	if t.baseURL == "" {
		return "Error: Python sandbox is not configured", nil
	}

	body, err := json.Marshal(sandboxRequest{Code: code})
	if err != nil {
		return fmt.Sprintf("Error encoding request: %v", err), nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return fmt.Sprintf("Error building request: %v", err), nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Sprintf("Error reaching sandbox: %v", err), nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Sprintf("Error reading sandbox response: %v", err), nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Sandbox returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))), nil
	}

	var out sandboxResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Sprintf("Error decoding sandbox response: %v", err), nil
	}
	if out.Error != "" {
		return fmt.Sprintf("Execution error: %s", out.Error), nil
	}

	var b strings.Builder
	if out.Stdout != "" {
		b.WriteString(out.Stdout)
	}
	if out.Stderr != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("stderr:\n")
		b.WriteString(out.Stderr)
	}
	if b.Len() == 0 {
		return fmt.Sprintf("(no output, exit code %d)", out.ExitCode), nil
	}
	if out.ExitCode != 0 {
		fmt.Fprintf(&b, "\n(exit code %d)", out.ExitCode)
	}
	return b.String(), nil
}

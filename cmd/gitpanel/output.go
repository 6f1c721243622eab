package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/gitpanel/internal/dispatcher/handler"
)

type jsonResult struct {
	Verb       string         `json:"verb"`
	Status     string         `json:"status"`
	Message    string         `json:"message,omitempty"`
	Error      string         `json:"error,omitempty"`
	Lines      []string       `json:"lines,omitempty"`
	Generation uint64         `json:"generation"`
	Data       map[string]any `json:"data,omitempty"`
}

func writeJSON(w io.Writer, verb string, res handler.Result) error {
	out := jsonResult{
		Verb:       verb,
		Status:     res.Status.String(),
		Message:    res.Message,
		Lines:      res.Lines,
		Generation: uint64(res.Generation),
		Data:       res.Data,
	}
	if res.Error != nil {
		out.Error = res.Error.Error()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		out.Data = nil
		return enc.Encode(out)
	}
	return nil
}

// writeText prints output lines to stdout and failures to stderr. The
// message is printed when there are no lines to carry it.
func writeText(stdout, stderr io.Writer, res handler.Result) {
	for _, line := range res.Lines {
		fmt.Fprintln(stdout, line)
	}

	switch res.Status {
	case handler.StatusError:
		fmt.Fprintf(stderr, "Error: %v\n", res.Error)
	case handler.StatusCancelled:
		msg := res.Message
		if msg == "" {
			msg = "cancelled"
		}
		fmt.Fprintln(stderr, msg)
	default:
		if res.Message != "" && (len(res.Lines) == 0 || res.Status == handler.StatusNoOp) {
			fmt.Fprintln(stdout, res.Message)
		}
	}
}

// exitFor maps a result status to the process exit status.
func exitFor(res handler.Result) error {
	switch res.Status {
	case handler.StatusError:
		return &exitError{code: 1}
	case handler.StatusCancelled:
		return &exitError{code: 2}
	default:
		return nil
	}
}

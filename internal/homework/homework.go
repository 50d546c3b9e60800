// Package homework validates homework-status API responses and turns the
// latest submission into a chat message.
package homework

import (
	"encoding/json"
	"fmt"
	"math"

	"hwbot/internal/fault"
)

// Response keys.
const (
	KeyHomeworks   = "homeworks"
	KeyCurrentDate = "current_date"
	KeyName        = "homework_name"
	KeyStatus      = "status"
)

// Verdicts maps a review status to its human-readable verdict.
var Verdicts = map[string]string{
	"approved":  "Success! The reviewer has approved your homework!",
	"reviewing": "Your homework is currently being reviewed.",
	"rejected":  "Your homework has been reviewed and needs some improvements.",
}

// CheckResponse validates a decoded API response and returns its submissions.
//
// Checks run in order: the response is a mapping, both required keys are
// present, and the submissions value is an array.
func CheckResponse(resp any) ([]any, error) {
	m, ok := resp.(map[string]any)
	if !ok {
		return nil, fault.NewTypeMismatch("server response is not a dictionary: %T", resp)
	}
	homeworks, ok := m[KeyHomeworks]
	if !ok {
		return nil, fault.NewMissingKey(KeyHomeworks)
	}
	if _, ok := m[KeyCurrentDate]; !ok {
		return nil, fault.NewMissingKey(KeyCurrentDate)
	}
	list, ok := homeworks.([]any)
	if !ok {
		return nil, fault.NewTypeMismatch("the response value for %q key is not a list: %T", KeyHomeworks, homeworks)
	}
	return list, nil
}

// Cursor reads the server-reported cursor from resp. It returns fallback when
// the value is absent or not an integer.
func Cursor(resp any, fallback int64) int64 {
	m, ok := resp.(map[string]any)
	if !ok {
		return fallback
	}
	switch v := m[KeyCurrentDate].(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return fallback
		}
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
	case int64:
		return v
	case int:
		return int64(v)
	}
	return fallback
}

// ParseStatus formats the status message for one submission record.
func ParseStatus(hw any) (string, error) {
	m, ok := hw.(map[string]any)
	if !ok {
		return "", fault.NewTypeMismatch("incorrect homework record format: %T", hw)
	}
	name, okName := m[KeyName]
	status, okStatus := m[KeyStatus]
	if !okName || !okStatus {
		return "", fault.NewKeyError("required key(s) %q/%q not present in homework record", KeyName, KeyStatus)
	}
	s, _ := status.(string)
	verdict, ok := Verdicts[s]
	if !ok {
		return "", fault.NewKeyError("unknown homework status: %v", status)
	}
	return fmt.Sprintf("Homework status has changed for \"%v\": %s", name, verdict), nil
}

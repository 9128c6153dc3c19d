package adapters

import (
	"encoding/json"
	"fmt"
)

// New creates an adapter from a kind and a generic configuration map. This is
// the central extension point for adding new data sources.
//
// Supported kinds:
//   - "esios": Spanish system operator indicator API (config: token, indicator)
//   - "http":  generic JSON API (config: url, valuePath, timestampPath, ...)
//   - "csv":   cleaned CSV export (config: path)
func New(kind string, config map[string]string) (Adapter, error) {
	switch kind {
	case "esios":
		token := config["token"]
		if token == "" {
			return nil, fmt.Errorf("esios adapter requires 'token' config")
		}
		indicator := config["indicator"]
		if indicator == "" {
			indicator = "1293" // national hourly demand
		}
		return NewESIOS(token, indicator), nil

	case "http":
		return newHTTP(config)

	case "csv":
		path := config["path"]
		if path == "" {
			return nil, fmt.Errorf("csv adapter requires 'path' config")
		}
		return &CSVAdapter{Path: path}, nil

	default:
		return nil, fmt.Errorf("unknown adapter kind: %s (must be esios, http, or csv)", kind)
	}
}

func newHTTP(config map[string]string) (Adapter, error) {
	url := config["url"]
	if url == "" {
		return nil, fmt.Errorf("http adapter requires 'url' config")
	}
	valuePath := config["valuePath"]
	timestampPath := config["timestampPath"]
	if valuePath == "" || timestampPath == "" {
		return nil, fmt.Errorf("http adapter requires 'valuePath' and 'timestampPath' config")
	}

	var headers map[string]string
	if headersJSON := config["headers"]; headersJSON != "" {
		if err := json.Unmarshal([]byte(headersJSON), &headers); err != nil {
			return nil, fmt.Errorf("invalid 'headers' JSON: %w", err)
		}
	}
	var templateVars map[string]string
	if varsJSON := config["templateVars"]; varsJSON != "" {
		if err := json.Unmarshal([]byte(varsJSON), &templateVars); err != nil {
			return nil, fmt.Errorf("invalid 'templateVars' JSON: %w", err)
		}
	}

	return &HTTPAdapter{
		URL:             url,
		Method:          config["method"],
		Headers:         headers,
		Body:            config["body"],
		ValuePath:       valuePath,
		TimestampPath:   timestampPath,
		TimestampFormat: config["timestampFormat"],
		TemplateVars:    templateVars,
	}, nil
}

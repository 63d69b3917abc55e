package ui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ansi colors
const (
	colorDim     = "\033[90m"
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorCyan    = "\033[36m"
	colorWhite   = "\033[37m"
	colorMagenta = "\033[35m"
)

func (a *App) renderResult() {
	a.renderFooter()
	v, err := a.g.View("result")
	if err != nil {
		return
	}
	v.Clear()

	r := a.lastRes
	if r.Stubbed {
		fmt.Fprintf(v, "%s%s%s\n", colorYellow, r.Status, colorReset)
		fmt.Fprintln(v, "payload:")
	} else {
		fmt.Fprintf(v, "%s\n", colorizeStatus(r.Status))
		fmt.Fprintf(v, "elapsed: %s\n", r.Elapsed)
	}
	fmt.Fprintln(v, "")
	fmt.Fprintln(v, formatBody(r.Body))
}

func formatBody(body string) string {
	var v any
	if err := json.Unmarshal([]byte(body), &v); err == nil {
		return colorizeJSON(v, 0)
	}
	return body
}

func colorizeStatus(status string) string {
	parts := strings.Fields(status)
	if len(parts) == 0 {
		return status
	}
	code, err := strconv.Atoi(parts[0])
	if err != nil {
		return status
	}
	var color string
	switch {
	case code >= 200 && code < 300:
		color = colorGreen
	case code >= 400 && code < 500:
		color = colorYellow
	case code >= 500:
		color = colorRed
	default:
		color = colorReset
	}
	return color + status + colorReset
}

// json value colors
const (
	colorKey     = "\033[36m"
	colorString  = "\033[32m"
	colorNumber  = "\033[33m"
	colorBool    = "\033[35m"
	colorNull    = "\033[90m"
	colorBracket = "\033[37m"
)

func colorizeJSON(v any, indent int) string {
	prefix := strings.Repeat("  ", indent)

	switch val := v.(type) {
	case nil:
		return colorNull + "null" + colorReset
	case bool:
		return colorBool + fmt.Sprintf("%v", val) + colorReset
	case float64:
		if val == float64(int64(val)) {
			return colorNumber + fmt.Sprintf("%.0f", val) + colorReset
		}
		return colorNumber + fmt.Sprintf("%v", val) + colorReset
	case string:
		return colorString + `"` + escapeJSON(val) + `"` + colorReset
	case []any:
		if len(val) == 0 {
			return colorBracket + "[]" + colorReset
		}
		var sb strings.Builder
		sb.WriteString(colorBracket + "[" + colorReset + "\n")
		for i, item := range val {
			sb.WriteString(prefix + "  " + colorizeJSON(item, indent+1))
			if i < len(val)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		sb.WriteString(prefix + colorBracket + "]" + colorReset)
		return sb.String()
	case map[string]any:
		if len(val) == 0 {
			return colorBracket + "{}" + colorReset
		}
		var sb strings.Builder
		sb.WriteString(colorBracket + "{" + colorReset + "\n")
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			sb.WriteString(prefix + "  " + colorKey + `"` + k + `"` + colorReset + ": ")
			sb.WriteString(colorizeJSON(val[k], indent+1))
			if i < len(keys)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}
		sb.WriteString(prefix + colorBracket + "}" + colorReset)
		return sb.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func escapeJSON(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	return s
}
